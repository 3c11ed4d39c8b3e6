package networking

import (
	"context"
	"errors"
	"testing"
)

func TestPageMetaPrefersOGTags(t *testing.T) {
	html := []byte(`<html><head>
<title>Fallback</title>
<meta property="og:title" content=" OG Title ">
<meta name="description" content="plain description">
<meta property="og:image" content="https://example.com/a.jpg">
</head><body></body></html>`)

	var pm PageMeta
	if err := pm.UnmarshalBody(html); err != nil {
		t.Fatalf("UnmarshalBody: %v", err)
	}
	if pm.Title != "OG Title" {
		t.Fatalf("unexpected title %q", pm.Title)
	}
	if pm.Description != "plain description" {
		t.Fatalf("unexpected description %q", pm.Description)
	}
	if pm.ImageURL != "https://example.com/a.jpg" {
		t.Fatalf("unexpected image %q", pm.ImageURL)
	}
}

func TestPageMetaEmptyDocumentFails(t *testing.T) {
	var pm PageMeta
	if err := pm.UnmarshalBody([]byte(`{"id":1}`)); !errors.Is(err, errNoPageMeta) {
		t.Fatalf("expected errNoPageMeta, got %v", err)
	}
}

func TestExecutePageMetaTarget(t *testing.T) {
	exec := NewExecutor(&fakeClient{resp: fakeResponse{body: []byte(`<title>Hello</title>`)}})
	got, err := Do[PageMeta](context.Background(), exec, Request{URL: "https://example.com"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got.Title != "Hello" {
		t.Fatalf("unexpected page meta %#v", got)
	}
}
