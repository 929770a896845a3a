package attachments

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/onyxandcode/onyx-site/pkg/logging"
)

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store copies contact form uploads into S3. If bucket is empty, all operations are no-ops.
type Store struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
	now      func() time.Time
}

// NewStore creates an attachment Store.
func NewStore(s3Client S3API, bucket string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{bucket: bucket, s3Client: s3Client, logger: logger, now: time.Now}
}

// Enabled returns true if a bucket and client are configured.
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// Put uploads data for the given lead and returns the object key.
func (s *Store) Put(ctx context.Context, leadID, filename, contentType string, data []byte) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := ObjectKey(s.now().UTC(), leadID, filename)
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata:    map[string]string{"lead-id": leadID},
	})
	if err != nil {
		return "", fmt.Errorf("attachments: s3 put %s: %w", key, err)
	}

	s.logger.Info("stored lead attachment", "lead_id", leadID, "s3_key", key, "bytes", len(data))
	return key, nil
}

// ObjectKey builds leads/<yyyy>/<mm>/<dd>/<lead_id>/<filename> with the filename reduced
// to a safe base name.
func ObjectKey(at time.Time, leadID, filename string) string {
	return fmt.Sprintf("leads/%d/%02d/%02d/%s/%s", at.Year(), at.Month(), at.Day(), leadID, safeName(filename))
}

func safeName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	name = strings.TrimLeft(name, ".")
	if name == "" || name == "_" {
		return "upload"
	}
	return name
}
