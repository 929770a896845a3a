package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/onyxandcode/onyx-site/internal/attachments"
	appconfig "github.com/onyxandcode/onyx-site/internal/config"
	"github.com/onyxandcode/onyx-site/pkg/logging"
)

// NeedsAWS reports whether any configured component talks to AWS.
func NeedsAWS(cfg *appconfig.Config) bool {
	if cfg == nil {
		return false
	}
	return strings.TrimSpace(cfg.AttachmentBucket) != "" || cfg.EmailProvider == "ses"
}

// LoadAWSConfig resolves AWS credentials. Static keys from the environment win
// over the default chain; AWS_ENDPOINT_OVERRIDE points clients at LocalStack.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	if cfg == nil {
		return aws.Config{}, fmt.Errorf("bootstrap: config is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	if endpoint := strings.TrimSpace(cfg.AWSEndpointOverride); endpoint != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(endpoint))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("bootstrap: load aws config: %w", err)
	}
	return awsCfg, nil
}

// BuildAttachmentStore returns an S3-backed store, or a disabled one when no
// bucket is configured.
func BuildAttachmentStore(awsCfg *aws.Config, cfg *appconfig.Config, logger *logging.Logger) *attachments.Store {
	if cfg == nil || awsCfg == nil || strings.TrimSpace(cfg.AttachmentBucket) == "" {
		return attachments.NewStore(nil, "", logger)
	}
	client := s3.NewFromConfig(*awsCfg, func(o *s3.Options) {
		// LocalStack and MinIO need path-style addressing.
		o.UsePathStyle = cfg.AWSEndpointOverride != ""
	})
	return attachments.NewStore(client, cfg.AttachmentBucket, logger)
}
