package networking

import (
	"encoding/xml"
	"strings"
)

// decodeXML is encoding/xml with one addition: a *any target receives the document as a
// tree of maps (name, attrs, text, children), so schema-less callers get the same shape
// they get from JSON and YAML.
func decodeXML(data []byte, v any) error {
	p, ok := v.(*any)
	if !ok {
		return xml.Unmarshal(data, v)
	}
	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return err
	}
	*p = root.tree()
	return nil
}

// xmlNode is a schema-less XML element.
type xmlNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []xmlNode  `xml:",any"`
}

// tree converts the node into maps so it prints like the JSON and YAML outputs.
func (n xmlNode) tree() map[string]any {
	if n.XMLName.Local == "" {
		return nil
	}
	out := map[string]any{"name": n.XMLName.Local}
	if len(n.Attrs) > 0 {
		attrs := make(map[string]string, len(n.Attrs))
		for _, a := range n.Attrs {
			attrs[a.Name.Local] = a.Value
		}
		out["attrs"] = attrs
	}
	if text := strings.TrimSpace(n.Text); text != "" {
		out["text"] = text
	}
	if len(n.Nodes) > 0 {
		children := make([]map[string]any, 0, len(n.Nodes))
		for _, c := range n.Nodes {
			children = append(children, c.tree())
		}
		out["children"] = children
	}
	return out
}
