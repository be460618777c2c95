package services

import (
	"fmt"
	"html"
	"net/smtp"

	"github.com/dimitrije/lessonforge-api/internal/config"
)

type EmailService struct {
	cfg config.SMTPConfig
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

func (s *EmailService) Send(to, subject, body string) error {
	if !s.IsConfigured() {
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, to, subject, body)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}

func (s *EmailService) SendCollaborationInvite(to, inviterName, contentTitle, role, inviteURL string) error {
	subject, body := collaborationInviteEmail(inviterName, contentTitle, role, inviteURL)
	return s.Send(to, subject, body)
}

func (s *EmailService) SendShareNotification(to, sharerName, contentTitle, shareURL string) error {
	subject, body := shareNotificationEmail(sharerName, contentTitle, shareURL)
	return s.Send(to, subject, body)
}

func collaborationInviteEmail(inviterName, contentTitle, role, inviteURL string) (string, string) {
	subject := fmt.Sprintf("%s invited you to collaborate on %s", inviterName, contentTitle)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Collaboration Invitation</h2>
			<p>Hi,</p>
			<p><strong>%s</strong> has invited you to work on <strong>%s</strong> as a %s.</p>
			<p><a href="%s">Click here to view and respond to this invitation</a></p>
		</body>
		</html>
	`, html.EscapeString(inviterName), html.EscapeString(contentTitle), html.EscapeString(role), inviteURL)
	return subject, body
}

func shareNotificationEmail(sharerName, contentTitle, shareURL string) (string, string) {
	subject := fmt.Sprintf("%s shared %s with you", sharerName, contentTitle)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>%s</h2>
			<p><strong>%s</strong> shared this with you.</p>
			<p><a href="%s">Open it here</a></p>
		</body>
		</html>
	`, html.EscapeString(contentTitle), html.EscapeString(sharerName), shareURL)
	return subject, body
}
