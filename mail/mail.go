// Package mail composes and delivers the contact form emails.
package mail

import (
	"bytes"
	"context"
	"html/template"

	"github.com/go-playground/validator/v10"
	"github.com/resend/resend-go/v2"
)

const (
	// FromAddress is the verified sender on the Resend domain.
	FromAddress = "Contact Form <contact@gwoollands.com>"
	// ToAddress receives every submission.
	ToAddress = "contact@gwoollands.com"
)

// Message is a provider-neutral outbound email.
type Message struct {
	From    string
	To      []string
	Subject string
	ReplyTo string
	HTML    string
}

// Sender delivers a Message and returns the provider's message ID.
type Sender interface {
	Send(ctx context.Context, msg *Message) (string, error)
}

// ContactSubmission is the body of POST /api/contact.
type ContactSubmission struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Message string `json:"message" validate:"required"`
}

var validate = validator.New()

// Validate reports whether every field is present. The email address is not
// checked beyond presence.
func (c *ContactSubmission) Validate() error {
	return validate.Struct(c)
}

var contactTemplate = template.Must(template.New("contact").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">New Contact Form Submission</h2>
  <div style="background-color: #f5f5f5; padding: 20px; border-radius: 5px;">
    <p style="margin: 10px 0;"><strong>Name:</strong> {{.Name}}</p>
    <p style="margin: 10px 0;"><strong>Email:</strong> {{.Email}}</p>
    <p style="margin: 10px 0;"><strong>Message:</strong></p>
    <div style="background-color: white; padding: 15px; border-radius: 5px; margin-top: 10px;">
      <p style="margin: 0; white-space: pre-wrap;">{{.Message}}</p>
    </div>
  </div>
  <p style="color: #666; font-size: 12px; margin-top: 20px;">
    This email was sent from your website's contact form.
  </p>
</div>
`))

// NewContactMessage renders a submission into the email sent to ToAddress.
// Replies go straight to the visitor.
func NewContactMessage(c *ContactSubmission) (*Message, error) {
	var body bytes.Buffer
	if err := contactTemplate.Execute(&body, c); err != nil {
		return nil, err
	}
	return &Message{
		From:    FromAddress,
		To:      []string{ToAddress},
		Subject: "New Contact Form Submission from " + c.Name,
		ReplyTo: c.Email,
		HTML:    body.String(),
	}, nil
}

// NewTestMessage is the email sent to check the provider is configured.
func NewTestMessage() *Message {
	return &Message{
		From:    FromAddress,
		To:      []string{ToAddress},
		Subject: "Test Email Configuration",
		HTML:    "<p>This is a test email to verify your Resend configuration.</p>",
	}
}

// ResendSender delivers through the Resend API.
type ResendSender struct {
	client *resend.Client
}

func NewResendSender(apiKey string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey)}
}

func (s *ResendSender) Send(ctx context.Context, msg *Message) (string, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		ReplyTo: msg.ReplyTo,
		Html:    msg.HTML,
	})
	if err != nil {
		return "", err
	}
	return sent.Id, nil
}
