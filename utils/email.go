package utils

import (
	"fmt"
	"strings"

	"github.com/Govind-619/InfuseDesk/models"
	"gopkg.in/gomail.v2"
)

// EmailConfig holds email configuration
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends back office notifications over SMTP
type Mailer struct {
	config    EmailConfig
	reviewers []string
	send      func(m *gomail.Message) error
}

// NewMailer creates a mailer that notifies reviewers of new approval requests
func NewMailer(config EmailConfig, reviewers []string) *Mailer {
	if config.Port == 0 {
		config.Port = 587
	}
	d := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	return &Mailer{config: config, reviewers: reviewers, send: func(m *gomail.Message) error {
		return d.DialAndSend(m)
	}}
}

// SendEmail sends an HTML email
func (m *Mailer) SendEmail(to []string, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.send(msg); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// NotifyApprovalFiled tells reviewers that a discount conflict awaits a decision
func (m *Mailer) NotifyApprovalFiled(req models.DiscountApprovalRequest) error {
	if len(m.reviewers) == 0 {
		return nil
	}

	var rules strings.Builder
	for _, d := range req.AppliedDiscounts {
		fmt.Fprintf(&rules, "<li>%s %s: %d</li>", d.Source, d.Code, d.Amount)
	}

	subject := fmt.Sprintf("Discount approval #%d needs review", req.ID)
	body := fmt.Sprintf(`
		<h2>Discount approval request #%d</h2>
		<p>Customer #%d, requested by staff #%d.</p>
		<p><strong>Conflict:</strong> %s</p>
		<ul>%s</ul>
		<p>Original amount: %d<br>Discount: %d<br>Final amount: %d</p>
		<p>%s</p>
	`, req.ID, req.CustomerID, req.RequestedBy, req.ConflictReason, rules.String(),
		req.OriginalAmount, req.DiscountAmount, req.FinalAmount, req.StaffNote)

	return m.SendEmail(m.reviewers, subject, body)
}
