package notification

import (
	"fmt"
	"log/slog"
	"net/smtp"
)

// EmailConfig holds SMTP settings for the email notifier.
type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string

	// AdminEmail receives the operational notices (invitations sent,
	// collections processed) until per-member addresses are wired in.
	AdminEmail string
}

// EmailNotifier sends notices over SMTP. Sends run in their own goroutine;
// failures are logged and dropped.
type EmailNotifier struct {
	config EmailConfig
}

// NewEmailNotifier creates an SMTP-backed notifier.
func NewEmailNotifier(config EmailConfig) *EmailNotifier {
	return &EmailNotifier{config: config}
}

// NotifyInvitation sends an invitation notice.
func (n *EmailNotifier) NotifyInvitation(circleID string, memberIDs []string) {
	subject := "Savings Circle Invitations Sent"
	body := fmt.Sprintf(`<html><body>
		<h2>Invitations Sent</h2>
		<p>%d member(s) were invited to savings circle %s.</p>
		<p>Members can respond from their dashboard until the circle's invitation deadline.</p>
	</body></html>`, len(memberIDs), circleID)
	n.send(subject, body)
}

// NotifyCollectionProcessed sends a disbursement notice.
func (n *EmailNotifier) NotifyCollectionProcessed(circleID string, cycle int, collectorID string) {
	subject := "Savings Circle Pot Disbursed"
	body := fmt.Sprintf(`<html><body>
		<h2>Pot Disbursed</h2>
		<p>Cycle %d of savings circle %s has been collected by member %s.</p>
	</body></html>`, cycle, circleID, collectorID)
	n.send(subject, body)
}

func (n *EmailNotifier) send(subject, body string) {
	go func() {
		if err := n.sendEmail(n.config.AdminEmail, subject, body); err != nil {
			slog.Warn("notification email failed", "subject", subject, "error", err)
		}
	}()
}

func (n *EmailNotifier) sendEmail(to, subject, body string) error {
	from := n.config.From
	if n.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", n.config.FromName, n.config.From)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		from, to, subject, body)

	auth := smtp.PlainAuth("", n.config.User, n.config.Password, n.config.Host)
	addr := fmt.Sprintf("%s:%d", n.config.Host, n.config.Port)
	return smtp.SendMail(addr, auth, n.config.From, []string{to}, []byte(msg))
}
