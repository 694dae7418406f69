package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/wolfman30/leadcapture-api/internal/leads"
	"github.com/wolfman30/leadcapture-api/pkg/logging"
)

// LeadAlerter emails the sales inbox whenever a lead is stored.
type LeadAlerter struct {
	email      EmailSender
	recipients []string
	timeout    time.Duration
	logger     *logging.Logger
}

var _ leads.Notifier = (*LeadAlerter)(nil)

// NewLeadAlerter returns nil when there is no sender or no recipient, which
// leaves notifications switched off.
func NewLeadAlerter(email EmailSender, recipients []string, logger *logging.Logger) *LeadAlerter {
	if logger == nil {
		logger = logging.Default()
	}
	var to []string
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, r)
		}
	}
	if email == nil || len(to) == 0 {
		return nil
	}
	return &LeadAlerter{
		email:      email,
		recipients: to,
		timeout:    10 * time.Second,
		logger:     logger,
	}
}

// NotifyNewLead sends one email per recipient. Failures are joined.
func (a *LeadAlerter) NotifyNewLead(ctx context.Context, lead *leads.Lead) error {
	if a == nil || lead == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	msg := leadEmail(lead)
	var errs []error
	for _, to := range a.recipients {
		msg.To = to
		if err := a.email.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", to, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	a.logger.Debug("lead notification sent", "id", lead.ID, "recipients", len(a.recipients))
	return nil
}

func leadEmail(lead *leads.Lead) EmailMessage {
	who := lead.Name
	if who == "" {
		who = lead.Email
	}
	if who == "" {
		who = "Someone"
	}

	var subject string
	if lead.Type == leads.TypeCart {
		subject = fmt.Sprintf("New cart lead: %s (%d x %s, %s)", who, lead.Quantity, lead.ProductFormat, lead.Flavor)
	} else {
		subject = fmt.Sprintf("New contact lead: %s", who)
	}

	rows := [][2]string{
		{"Name", lead.Name},
		{"Email", lead.Email},
		{"Phone", lead.Phone},
		{"Source", lead.Source},
		{"Product format", string(lead.ProductFormat)},
		{"Flavor", string(lead.Flavor)},
		{"Quantity", fmt.Sprintf("%d", lead.Quantity)},
		{"Received", lead.CreatedAt.Format("January 2, 2006 at 3:04 PM MST")},
	}

	var text, rich strings.Builder
	rich.WriteString("<table>")
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		fmt.Fprintf(&text, "%s: %s\n", row[0], row[1])
		fmt.Fprintf(&rich, "<tr><th align=\"left\">%s</th><td>%s</td></tr>", row[0], html.EscapeString(row[1]))
	}
	rich.WriteString("</table>")

	return EmailMessage{
		Subject: subject,
		Body:    text.String(),
		HTML:    rich.String(),
	}
}
