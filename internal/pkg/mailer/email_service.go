package mailer

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendResetToken(toEmail, token string) error
}

type emailService struct {
	dialer     *gomail.Dialer
	from       string
	senderName string
	clientURL  string
}

func NewEmailService(host string, port int, username, password, senderName, clientURL string) IEmailService {
	return &emailService{
		dialer:     gomail.NewDialer(host, port, username, password),
		from:       username,
		senderName: senderName,
		clientURL:  clientURL,
	}
}

// ResetLink builds the frontend link a user follows to choose a new password.
func ResetLink(clientURL, token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", clientURL, token)
}

func (s *emailService) SendResetToken(toEmail, token string) error {
	if s.dialer.Host == "" {
		log.Printf("[MAILER] SMTP not configured, skipping reset email to %s", toEmail)
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Reset your UNY Compass password")

	resetLink := ResetLink(s.clientURL, token)
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Password Reset Request</h2>
			<p>We received a request to reset the password on your UNY Compass account.</p>
			<a href="%s" style="background-color: #5b2c83; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Reset Password</a>
			<p>Or copy this link:</p>
			<p>%s</p>
			<p>This link will expire in 1 hour.</p>
			<p>If you didn't request this, you can ignore this email.</p>
		</div>
	`, resetLink, resetLink)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		log.Printf("[MAILER ERROR] Failed to send reset token to %s: %v", toEmail, err)
		return err
	}

	log.Printf("[MAILER] Reset token sent to %s", toEmail)
	return nil
}
