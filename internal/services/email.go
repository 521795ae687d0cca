package services

import (
	"context"
	"fmt"

	"eventlive/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendRegistrationConfirmed sends the ticket confirmation email using the
// "registration_confirmed" template. The meeting link is part of the body,
// so this is only called after a successful registration.
func (s *emailService) SendRegistrationConfirmed(ctx context.Context, data *domain.RegistrationConfirmedEmailData) error {
	if data == nil {
		return fmt.Errorf("registration confirmed data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("registration_confirmed", data)
	if err != nil {
		return fmt.Errorf("failed to render registration_confirmed template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send registration confirmation: %w", err)
	}
	return nil
}
