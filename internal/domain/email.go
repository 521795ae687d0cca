package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RegistrationConfirmedEmailData holds data for the registration
// confirmation email sent after a successful ticket creation.
type RegistrationConfirmedEmailData struct {
	Email       string
	UserName    string
	EventTitle  string
	MeetingLink string
	StartTime   string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRegistrationConfirmed(ctx context.Context, data *RegistrationConfirmedEmailData) error
}
