package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventlive/internal/domain"
)

func TestTemplateRenderer_RegistrationConfirmed(t *testing.T) {
	renderer := NewTemplateRenderer()

	t.Run("full data", func(t *testing.T) {
		subject, html, text, err := renderer.Render("registration_confirmed", &domain.RegistrationConfirmedEmailData{
			Email:       "ana@example.com",
			UserName:    "Ana",
			EventTitle:  "Go Meetup",
			MeetingLink: "https://meet.example.com/go",
			StartTime:   "Mon, Mar 2 2026 18:00 UTC",
		})
		require.NoError(t, err)
		assert.Contains(t, subject, "Go Meetup")
		assert.Contains(t, html, "Ana")
		assert.Contains(t, html, "https://meet.example.com/go")
		assert.Contains(t, text, "Go Meetup")
	})

	t.Run("without meeting link", func(t *testing.T) {
		_, html, text, err := renderer.Render("registration_confirmed", &domain.RegistrationConfirmedEmailData{
			Email:      "ana@example.com",
			UserName:   "Ana",
			EventTitle: "Go Meetup",
		})
		require.NoError(t, err)
		assert.NotContains(t, html, "meet.example.com")
		assert.NotContains(t, text, "meet.example.com")
	})

	t.Run("unknown template", func(t *testing.T) {
		_, _, _, err := renderer.Render("no_such_template", nil)
		assert.Error(t, err)
	})
}
