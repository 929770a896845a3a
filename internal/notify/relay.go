package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/onyxandcode/onyx-site/pkg/logging"
)

var relayTracer = otel.Tracer("onyx.internal.notify.relay")

// UploadField is the multipart field name the relay expects for attachments.
const UploadField = "upload"

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// FormRelay posts the raw form to a hosted form-relay endpoint that emails the agency.
// Only the HTTP status is inspected; the body is discarded.
type FormRelay struct {
	url    string
	client HTTPDoer
	logger *logging.Logger
}

// NewFormRelay returns nil when no endpoint is configured.
func NewFormRelay(url string, client HTTPDoer, logger *logging.Logger) *FormRelay {
	if url == "" {
		return nil
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FormRelay{url: url, client: client, logger: logger}
}

// Notify implements Notifier.
func (f *FormRelay) Notify(ctx context.Context, sub Submission) error {
	if f == nil {
		return nil
	}
	ctx, span := relayTracer.Start(ctx, "notify.form_relay")
	defer span.End()
	span.SetAttributes(attribute.Bool("has_attachment", sub.Attachment != nil))

	body, contentType, err := EncodeMultipart(sub)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("notify: encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, body)
	if err != nil {
		return fmt.Errorf("notify: build relay request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "relay transport error")
		return fmt.Errorf("notify: relay post failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, "relay rejected")
		return &RelayStatusError{StatusCode: resp.StatusCode}
	}

	f.logger.Debug("form relay accepted submission", "lead_id", sub.LeadID, "status", resp.StatusCode)
	return nil
}

// RelayStatusError is returned when the relay answers with a non-2xx status.
type RelayStatusError struct {
	StatusCode int
}

func (e *RelayStatusError) Error() string {
	return fmt.Sprintf("notify: relay returned status %d", e.StatusCode)
}

// EncodeMultipart builds the multipart body a browser would send for the contact form.
func EncodeMultipart(sub Submission) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := []struct{ key, value string }{
		{"name", sub.Name},
		{"email", sub.Email},
		{"message", sub.Message},
	}
	for _, field := range fields {
		if err := mw.WriteField(field.key, field.value); err != nil {
			return nil, "", err
		}
	}

	if sub.Attachment != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, UploadField, sub.Attachment.Filename))
		contentType := sub.Attachment.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(sub.Attachment.Data); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
