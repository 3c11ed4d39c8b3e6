package sinks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samvad-hq/netreq/pkg/networking"
)

const (
	// Supported sink types.
	TypeHTTP   = "http"
	TypeSQS    = "sqs"
	TypeSNS    = "sns"
	TypePubSub = "gcp_pubsub"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// SinkConfig is one entry of the sinks file. Exactly the block matching Type is read.
type SinkConfig struct {
	ID      string            `json:"id" yaml:"id"`
	Type    string            `json:"type" yaml:"type"`
	Enabled *bool             `json:"enabled" yaml:"enabled"`
	HTTP    *HTTPSinkConfig   `json:"http" yaml:"http"`
	SQS     *SQSSinkConfig    `json:"sqs" yaml:"sqs"`
	SNS     *SNSSinkConfig    `json:"sns" yaml:"sns"`
	PubSub  *PubSubSinkConfig `json:"gcp_pubsub" yaml:"gcp_pubsub"`
}

// HTTPSinkConfig holds generic webhook settings.
type HTTPSinkConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// AWSSettings are shared by the SQS and SNS sinks. Static keys are optional; the default
// credential chain is used when they are empty.
type AWSSettings struct {
	Region          string `json:"region" yaml:"region"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token" yaml:"session_token"`
}

// SQSSinkConfig holds AWS SQS specific settings.
type SQSSinkConfig struct {
	QueueURL    string `json:"uri" yaml:"uri"`
	AWSSettings `json:",inline" yaml:",inline"`
}

// SNSSinkConfig holds AWS SNS specific settings.
type SNSSinkConfig struct {
	TopicARN    string `json:"topic_arn" yaml:"topic_arn"`
	AWSSettings `json:",inline" yaml:",inline"`
}

// PubSubSinkConfig holds Google Cloud Pub/Sub settings.
type PubSubSinkConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
}

// settingsBlock is implemented by every per-type block of SinkConfig.
type settingsBlock interface {
	normalize()
	validate() error
}

func (c *HTTPSinkConfig) normalize() {
	c.URL = strings.TrimSpace(c.URL)
	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	if c.Method == "" {
		c.Method = httpDefaultMethod
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = httpDefaultTimeoutSeconds
	}
	headers := make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			headers[k] = v
		}
	}
	c.Headers = nil
	if len(headers) > 0 {
		c.Headers = headers
	}
}

func (c *HTTPSinkConfig) validate() error {
	return required("http.url", c.URL)
}

func (s *AWSSettings) normalize() {
	for _, f := range []*string{&s.Region, &s.Endpoint, &s.AccessKeyID, &s.SecretAccessKey, &s.SessionToken} {
		*f = strings.TrimSpace(*f)
	}
}

// validate checks the region and that static keys come in pairs.
func (s *AWSSettings) validate(prefix string) error {
	if err := required(prefix+".region", s.Region); err != nil {
		return err
	}
	if (s.AccessKeyID == "") != (s.SecretAccessKey == "") {
		return fmt.Errorf("%s.access_key_id and %s.secret_access_key must be set together", prefix, prefix)
	}
	return nil
}

func (c *SQSSinkConfig) normalize() {
	c.QueueURL = strings.TrimSpace(c.QueueURL)
	c.AWSSettings.normalize()
}

func (c *SQSSinkConfig) validate() error {
	if err := required("sqs.uri", c.QueueURL); err != nil {
		return err
	}
	return c.AWSSettings.validate(TypeSQS)
}

func (c *SNSSinkConfig) normalize() {
	c.TopicARN = strings.TrimSpace(c.TopicARN)
	c.AWSSettings.normalize()
}

func (c *SNSSinkConfig) validate() error {
	if err := required("sns.topic_arn", c.TopicARN); err != nil {
		return err
	}
	return c.AWSSettings.validate(TypeSNS)
}

func (c *PubSubSinkConfig) normalize() {
	for _, f := range []*string{&c.ProjectID, &c.Topic, &c.CredentialsFile, &c.Endpoint} {
		*f = strings.TrimSpace(*f)
	}
}

func (c *PubSubSinkConfig) validate() error {
	if err := required("gcp_pubsub.project_id", c.ProjectID); err != nil {
		return err
	}
	return required("gcp_pubsub.topic", c.Topic)
}

func required(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// block returns the settings block selected by Type, or nil when it is absent.
func (cfg *SinkConfig) block() settingsBlock {
	switch cfg.Type {
	case TypeHTTP:
		if cfg.HTTP != nil {
			return cfg.HTTP
		}
	case TypeSQS:
		if cfg.SQS != nil {
			return cfg.SQS
		}
	case TypeSNS:
		if cfg.SNS != nil {
			return cfg.SNS
		}
	case TypePubSub:
		if cfg.PubSub != nil {
			return cfg.PubSub
		}
	}
	return nil
}

// normalize trims identifiers and the selected block, and defaults Enabled to true.
func (cfg *SinkConfig) normalize() {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	if cfg.Enabled == nil {
		on := true
		cfg.Enabled = &on
	}
	if b := cfg.block(); b != nil {
		b.normalize()
	}
}

func validateSinkConfig(cfg SinkConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	if cfg.Type == "" {
		return fmt.Errorf("sink %q: type is required", cfg.ID)
	}
	switch cfg.Type {
	case TypeHTTP, TypeSQS, TypeSNS, TypePubSub:
	default:
		return fmt.Errorf("sink %q: unsupported type %q", cfg.ID, cfg.Type)
	}
	b := cfg.block()
	if b == nil {
		return fmt.Errorf("sink %q: %s settings block is required", cfg.ID, cfg.Type)
	}
	if err := b.validate(); err != nil {
		return fmt.Errorf("sink %q: %w", cfg.ID, err)
	}
	return nil
}

// EnabledValue returns enabled flag defaulting to true.
func (cfg SinkConfig) EnabledValue() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}

// ConfigRegistry is the validated, read-only content of a sinks file.
type ConfigRegistry struct {
	sinks []SinkConfig
	idx   map[string]int
}

// LoadRegistry reads a sinks file. A .json file is decoded as JSON; anything else is read as
// YAML, which also accepts JSON.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sinks file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sinks file: %w", err)
	}

	dec := networking.YAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec = networking.JSON
	}
	var file struct {
		Sinks []SinkConfig `json:"sinks" yaml:"sinks"`
	}
	if err := dec.Decode(raw, &file); err != nil {
		return nil, fmt.Errorf("decode sinks file %s: %w", filepath.Base(path), err)
	}
	if len(file.Sinks) == 0 {
		return nil, errors.New("sinks file contains no sinks entries")
	}

	reg := &ConfigRegistry{
		sinks: make([]SinkConfig, 0, len(file.Sinks)),
		idx:   make(map[string]int, len(file.Sinks)),
	}
	for i, cfg := range file.Sinks {
		cfg.normalize()
		if err := validateSinkConfig(cfg); err != nil {
			return nil, fmt.Errorf("sinks[%d]: %w", i, err)
		}
		if _, dup := reg.idx[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate sink id %q", cfg.ID)
		}
		reg.idx[cfg.ID] = len(reg.sinks)
		reg.sinks = append(reg.sinks, cfg)
	}
	return reg, nil
}

// ByID returns the sink config by id.
func (r *ConfigRegistry) ByID(id string) (SinkConfig, bool) {
	if r == nil {
		return SinkConfig{}, false
	}
	i, ok := r.idx[strings.TrimSpace(id)]
	if !ok {
		return SinkConfig{}, false
	}
	return r.sinks[i], true
}

// Enabled returns the enabled sinks in file order.
func (r *ConfigRegistry) Enabled() []SinkConfig {
	if r == nil {
		return nil
	}
	var out []SinkConfig
	for _, cfg := range r.sinks {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}
