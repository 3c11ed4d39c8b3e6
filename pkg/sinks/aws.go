package sinks

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// loadAWSConfig resolves an aws.Config for the region, using static keys when both are set.
func loadAWSConfig(ctx context.Context, s AWSSettings) (aws.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(s.Region)}
	if s.AccessKeyID != "" && s.SecretAccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKeyID, s.SecretAccessKey, s.SessionToken),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// baseEndpoint returns the override endpoint or nil to keep the SDK default.
func baseEndpoint(s AWSSettings) *string {
	if s.Endpoint == "" {
		return nil
	}
	return aws.String(s.Endpoint)
}

func stringAttributes[V any](attrs map[string]string, build func(string) V) map[string]V {
	out := make(map[string]V, len(attrs))
	for k, v := range attrs {
		if v == "" {
			continue
		}
		out[k] = build(v)
	}
	return out
}
