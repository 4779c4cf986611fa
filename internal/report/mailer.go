package report

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends summary emails via SendGrid. Sender identity comes from
// FROM_NAME and FROM_ADDRESS, the API key from EMAIL_API_KEY.
type Mailer struct {
	send func(*mail.SGMailV3) (int, error)
}

func NewMailer() *Mailer {
	client := sendgrid.NewSendClient(os.Getenv("EMAIL_API_KEY"))
	return &Mailer{
		send: func(m *mail.SGMailV3) (int, error) {
			response, err := client.Send(m)
			if err != nil {
				return 0, err
			}
			return response.StatusCode, nil
		},
	}
}

// SendSummary emails the rendered summary table to the given recipient.
func (m *Mailer) SendSummary(to string, data [][]string, day time.Time) error {
	if to == "" {
		return errors.New("missing recipient address")
	}

	from := mail.NewEmail(os.Getenv("FROM_NAME"), os.Getenv("FROM_ADDRESS"))
	toEmail := mail.NewEmail("", to)
	subject := fmt.Sprintf("Timesheet summary for %s", day.Format("2006-01-02"))
	body := FormatBody(data)
	email := mail.NewSingleEmail(from, subject, toEmail, body, body)

	status, err := m.send(email)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if status >= 400 {
		return fmt.Errorf("sendgrid error: status %d", status)
	}

	return nil
}

// FormatBody renders the summary table as aligned plain text.
func FormatBody(data [][]string) string {
	widths := make([]int, 0)
	for _, row := range data {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for _, row := range data {
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
		}
		b.WriteString("\n")
	}

	return b.String()
}
