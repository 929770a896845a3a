package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []EmailMessage
}

func (r *recordingSender) Send(_ context.Context, msg EmailMessage) error {
	r.sent = append(r.sent, msg)
	return nil
}

func TestMulti_RunsEveryChannelAndJoinsErrors(t *testing.T) {
	first := errors.New("relay down")
	var calls int
	m := Multi{
		NotifierFunc(func(context.Context, Submission) error { calls++; return first }),
		nil,
		NotifierFunc(func(context.Context, Submission) error { calls++; return nil }),
	}

	err := m.Notify(context.Background(), Submission{Name: "A"})
	assert.Equal(t, 2, calls)
	assert.ErrorIs(t, err, first)
}

func TestMulti_EmptyIsNoop(t *testing.T) {
	assert.NoError(t, Multi{}.Notify(context.Background(), Submission{}))
}

func TestEmailNotifier_SendsSummary(t *testing.T) {
	sender := &recordingSender{}
	n := NewEmailNotifier(sender, "studio@example.com")
	require.NotNil(t, n)

	err := n.Notify(context.Background(), Submission{
		LeadID:     "lead-1",
		Name:       "Jane Doe",
		Email:      "jane@x.com",
		Message:    "Need a site",
		Attachment: &Attachment{Filename: "brief.pdf", Data: []byte("abc")},
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "studio@example.com", msg.To)
	assert.Equal(t, "New lead: Jane Doe", msg.Subject)
	assert.True(t, strings.Contains(msg.Body, "Lead ID: lead-1"))
	assert.True(t, strings.Contains(msg.Body, "brief.pdf (3 bytes)"))
	assert.Equal(t, "jane@x.com", msg.ReplyTo)
	assert.Equal(t, "Jane Doe", msg.ReplyToName)
	assert.Equal(t, LeadCategory, msg.Category)
	assert.Contains(t, msg.HTML, "brief.pdf")
}

func TestLeadEmail_EscapesVisitorInputInHTML(t *testing.T) {
	msg := LeadEmail(Submission{
		Name:    "<b>Mallory</b>",
		Email:   "m@x.com",
		Message: "<script>alert(1)</script>",
	}, "studio@example.com")

	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.Contains(t, msg.Body, "<script>alert(1)</script>")
	assert.Equal(t, "m@x.com", msg.ReplyTo)
}

func TestNewEmailNotifier_RequiresSenderAndRecipient(t *testing.T) {
	assert.Nil(t, NewEmailNotifier(nil, "studio@example.com"))
	assert.Nil(t, NewEmailNotifier(&recordingSender{}, ""))
}
