package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwell-tutoring/inkwell-platform/internal/leads"
	"github.com/inkwell-tutoring/inkwell-platform/pkg/logging"
)

// LeadAlerter emails the tutor when a new lead arrives. Failures are logged
// and swallowed: the submission already succeeded by the time this runs, and
// an alert must never change that outcome.
type LeadAlerter struct {
	sender  EmailSender
	toEmail string
	toName  string
	logger  *logging.Logger
}

// NewLeadAlerter builds an alerter. Returns nil when no destination address
// is configured, which callers treat as alerts disabled.
func NewLeadAlerter(sender EmailSender, toEmail, toName string, logger *logging.Logger) *LeadAlerter {
	if sender == nil || toEmail == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadAlerter{
		sender:  sender,
		toEmail: toEmail,
		toName:  toName,
		logger:  logger,
	}
}

// LeadCreated sends the alert for a freshly stored lead.
func (a *LeadAlerter) LeadCreated(ctx context.Context, lead *leads.Lead) {
	if a == nil {
		return
	}
	msg := EmailMessage{
		To:      a.toEmail,
		ToName:  a.toName,
		Subject: fmt.Sprintf("New tutoring inquiry from %s", lead.Name),
		Body:    formatLeadAlert(lead),
	}
	if err := a.sender.Send(ctx, msg); err != nil {
		a.logger.Error("lead alert failed", "error", err, "lead_id", lead.ID)
		return
	}
	a.logger.Info("lead alert sent", "lead_id", lead.ID)
}

func formatLeadAlert(lead *leads.Lead) string {
	received := time.UnixMilli(lead.CreatedAt).UTC().Format(time.RFC1123)
	return fmt.Sprintf(
		"A new lead came in through the website.\n\nName: %s\nEmail: %s\nReceived: %s\n\nMessage:\n%s\n",
		lead.Name, lead.Email, received, lead.Message,
	)
}

var _ leads.Notifier = (*LeadAlerter)(nil)
