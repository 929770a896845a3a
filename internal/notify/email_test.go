package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/require"

	"github.com/onyxandcode/onyx-site/pkg/logging"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{FromEmail: "studio@example.com"}, nil)
	assert.Nil(t, sender)
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "test-key", FromEmail: "studio@example.com"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, DefaultFromName, sender.fromName)
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{}
	err := sender.Send(context.Background(), EmailMessage{To: "x@example.com", Subject: "s", Body: "b"})
	assert.Error(t, err)
}

func TestStubEmailSender_Send(t *testing.T) {
	sender := NewStubEmailSender(logging.New("error"))
	assert.NoError(t, sender.Send(context.Background(), EmailMessage{To: "x@example.com", Subject: "s"}))
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSender_SendBuildsMessage(t *testing.T) {
	client := &fakeSES{}
	sender := NewSESSender(client, SESConfig{FromEmail: "studio@example.com"}, logging.New("error"))
	require.NotNil(t, sender)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "inbox@example.com",
		Subject: "New lead: Jane",
		Body:    "hello",
	})
	require.NoError(t, err)
	require.NotNil(t, client.input)
	assert.Equal(t, "Onyx & Code <studio@example.com>", aws.ToString(client.input.FromEmailAddress))
	assert.Equal(t, []string{"inbox@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "hello", aws.ToString(client.input.Content.Simple.Body.Text.Data))
	assert.Nil(t, client.input.Content.Simple.Body.Html)
}

func TestSESSender_SendRepliesToVisitor(t *testing.T) {
	client := &fakeSES{}
	sender := NewSESSender(client, SESConfig{FromEmail: "studio@example.com"}, logging.New("error"))

	msg := LeadEmail(Submission{Name: "Jane Doe", Email: "jane@x.com", Message: "hi"}, "inbox@example.com")
	require.NoError(t, sender.Send(context.Background(), msg))

	assert.Equal(t, []string{"jane@x.com"}, client.input.ReplyToAddresses)
	require.Len(t, client.input.EmailTags, 1)
	assert.Equal(t, "lead", aws.ToString(client.input.EmailTags[0].Value))
	assert.NotNil(t, client.input.Content.Simple.Body.Html)
}

func TestBuildSendGridMail_LeadHeaders(t *testing.T) {
	msg := LeadEmail(Submission{Name: "Jane Doe", Email: "jane@x.com", Message: "hi"}, "inbox@example.com")
	m := buildSendGridMail(mail.NewEmail(DefaultFromName, "studio@example.com"), msg)

	require.NotNil(t, m.ReplyTo)
	assert.Equal(t, "jane@x.com", m.ReplyTo.Address)
	assert.Equal(t, "Jane Doe", m.ReplyTo.Name)
	assert.Equal(t, []string{"lead"}, m.Categories)
	assert.Equal(t, "New lead: Jane Doe", m.Subject)
	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "inbox@example.com", m.Personalizations[0].To[0].Address)
	require.Len(t, m.Content, 2)
	assert.Equal(t, "text/plain", m.Content[0].Type)
	assert.Equal(t, "text/html", m.Content[1].Type)
}

func TestBuildSendGridMail_PlainOnly(t *testing.T) {
	m := buildSendGridMail(mail.NewEmail("", "studio@example.com"), EmailMessage{To: "a@b.c", Subject: "s", Body: "b"})
	assert.Nil(t, m.ReplyTo)
	assert.Empty(t, m.Categories)
	require.Len(t, m.Content, 1)
}

func TestSESSender_SendWrapsError(t *testing.T) {
	boom := errors.New("throttled")
	sender := NewSESSender(&fakeSES{err: boom}, SESConfig{FromEmail: "studio@example.com"}, logging.New("error"))
	err := sender.Send(context.Background(), EmailMessage{To: "inbox@example.com", Subject: "s", Body: "b"})
	assert.ErrorIs(t, err, boom)
}
