package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/benjithedalilama/eat-wild/internal/domain"
	"github.com/benjithedalilama/eat-wild/internal/observability"
	"github.com/cockroachdb/errors"
	"github.com/resend/resend-go/v2"
)

// Mailer sends the booking confirmation through Resend. With no API key
// configured it logs and skips, so local setups work without email.
type Mailer struct {
	client *resend.Client
	from   string
	appURL string
	logger observability.Logger
}

func NewMailer(apiKey, from, appURL string, logger observability.Logger) *Mailer {
	var client *resend.Client
	if apiKey != "" {
		client = resend.NewClient(apiKey)
	}
	return &Mailer{client: client, from: from, appURL: appURL, logger: logger}
}

func (m *Mailer) SendConfirmation(ctx context.Context, ev *domain.Event, customerName, customerEmail string) error {
	if m.client == nil {
		m.logger.Info("no resend api key configured, skipping confirmation email")
		return nil
	}

	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{customerEmail},
		Subject: "Your ticket for " + ev.Title,
		Html:    ConfirmationHTML(ev, customerName, m.appURL),
	})
	if err != nil {
		return errors.Wrap(err, "send confirmation email")
	}
	return nil
}

// ConfirmationHTML builds the confirmation body: greeting, the event details
// box, and the formatted additional-details fragment when present.
func ConfirmationHTML(ev *domain.Event, customerName, appURL string) string {
	var b strings.Builder

	b.WriteString(`<div style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Helvetica, Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 40px 20px;">`)
	fmt.Fprintf(&b, `<a href="%s" style="display: flex; align-items: center; margin-bottom: 40px; text-decoration: none;">`, appURL)
	b.WriteString(`<span style="font-size: 20px; font-weight: 300; color: #000;">eat wild</span></a>`)

	b.WriteString(`<h1 style="font-size: 24px; font-weight: 400; margin-bottom: 16px; color: #000; line-height: 1.6;">thank you for booking!</h1>`)
	fmt.Fprintf(&b, `<p style="%s">hi %s,</p>`, bodyStyle, customerName)
	fmt.Fprintf(&b, `<p style="font-size: 16px; font-weight: 300; margin-bottom: 24px; color: #333; line-height: 1.6;">your ticket for <span style="font-weight: 400;">%s</span> has been confirmed.</p>`, ev.Title)

	b.WriteString(`<div style="background: #f5f3ed; padding: 20px; border-radius: 4px; margin-bottom: 24px;">`)
	b.WriteString(`<h2 style="font-size: 18px; font-weight: 400; margin-bottom: 16px; color: #000; line-height: 1.6;">important details for attendees</h2>`)
	fmt.Fprintf(&b, `<p style="%s"><span style="font-weight: 400;">event:</span> %s</p>`, bodyStyle, ev.Title)
	fmt.Fprintf(&b, `<p style="%s"><span style="font-weight: 400;">date:</span> %s</p>`, bodyStyle, ev.Date)
	fmt.Fprintf(&b, `<p style="%s"><span style="font-weight: 400;">location:</span> %s</p>`, bodyStyle, ev.Location)
	fmt.Fprintf(&b, `<p style="%s"><span style="font-weight: 400;">description:</span> %s</p>`, bodyStyle, ev.Description)
	if ev.AdditionalDetails != "" {
		fmt.Fprintf(&b, `<div style="margin-top: 20px;">%s</div>`, FormatDetails(ev.AdditionalDetails))
	}
	b.WriteString(`</div>`)

	fmt.Fprintf(&b, `<p style="font-size: 16px; font-weight: 300; margin-bottom: 20px; color: #333;"><a href="%s/events/%s" style="color: #000; text-decoration: underline;">view event details</a></p>`, appURL, ev.ID)
	fmt.Fprintf(&b, `<p style="%s">we look forward to seeing you!</p>`, bodyStyle)
	fmt.Fprintf(&b, `<p style="%s">— the eat wild team</p>`, bodyStyle)
	b.WriteString(`</div>`)

	return b.String()
}
