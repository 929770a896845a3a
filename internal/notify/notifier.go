package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
)

// Attachment is an uploaded file forwarded alongside a submission.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Submission is the raw contact form as the visitor sent it.
type Submission struct {
	LeadID     string
	Name       string
	Email      string
	Message    string
	Attachment *Attachment
}

// Notifier delivers a submission to a human-facing channel.
type Notifier interface {
	Notify(ctx context.Context, sub Submission) error
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(ctx context.Context, sub Submission) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, sub Submission) error {
	return f(ctx, sub)
}

// Multi fans a submission out to every configured notifier. Each one runs even
// if an earlier one failed; the returned error joins all failures.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, sub Submission) error {
	var errs []error
	for i, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, sub); err != nil {
			errs = append(errs, fmt.Errorf("notify: channel %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// EmailNotifier emails a lead summary to the agency inbox.
type EmailNotifier struct {
	sender EmailSender
	to     string
}

// NewEmailNotifier returns nil when either the sender or the recipient is missing.
func NewEmailNotifier(sender EmailSender, to string) *EmailNotifier {
	if sender == nil || to == "" {
		return nil
	}
	return &EmailNotifier{sender: sender, to: to}
}

// Notify implements Notifier.
func (n *EmailNotifier) Notify(ctx context.Context, sub Submission) error {
	if n == nil {
		return nil
	}
	return n.sender.Send(ctx, LeadEmail(sub, n.to))
}

// LeadCategory tags lead notification mail.
const LeadCategory = "lead"

// LeadEmail builds the agency notification for one submission. Replies go
// straight to the visitor.
func LeadEmail(sub Submission, to string) EmailMessage {
	msg := EmailMessage{
		To:          to,
		Subject:     fmt.Sprintf("New lead: %s", sub.Name),
		Body:        FormatLeadEmail(sub),
		ReplyTo:     sub.Email,
		ReplyToName: sub.Name,
		Category:    LeadCategory,
	}
	var html bytes.Buffer
	if err := leadHTML.Execute(&html, sub); err == nil {
		msg.HTML = html.String()
	}
	return msg
}

var leadHTML = template.Must(template.New("lead").Parse(`<h2>New lead</h2>
<p><strong>Name:</strong> {{.Name}}<br><strong>Email:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
<p style="white-space:pre-wrap">{{.Message}}</p>
{{if .LeadID}}<p>Lead ID: {{.LeadID}}</p>{{end}}{{if .Attachment}}<p>Attachment: {{.Attachment.Filename}}</p>{{end}}`))

// FormatLeadEmail renders the plain-text body for a lead notification.
func FormatLeadEmail(sub Submission) string {
	body := fmt.Sprintf("Name: %s\nEmail: %s\n\n%s\n", sub.Name, sub.Email, sub.Message)
	if sub.LeadID != "" {
		body += fmt.Sprintf("\nLead ID: %s\n", sub.LeadID)
	}
	if sub.Attachment != nil {
		body += fmt.Sprintf("Attachment: %s (%d bytes)\n", sub.Attachment.Filename, len(sub.Attachment.Data))
	}
	return body
}
