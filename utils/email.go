package utils

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/jeturing/Segrd-forensics-sub000/logging"
)

// SendEmail sends an HTML email through the configured SMTP relay.
func SendEmail(to, subject, body string) error {
	from := os.Getenv("SMTP_FROM")
	password := os.Getenv("SMTP_PASSWORD")
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	if smtpPort == "" {
		smtpPort = "587"
	}

	if from == "" || password == "" || smtpHost == "" {
		logging.Logger.Errorf("Event ID: SEND_EMAIL_MISSING_ENV, Description: SMTP_FROM, SMTP_PASSWORD or SMTP_HOST is not set.")
		return fmt.Errorf("SMTP configuration is missing")
	}

	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", from, password, smtpHost)

	if err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, []string{to}, message); err != nil {
		logging.Logger.Errorf("Event ID: SEND_EMAIL_FAILED, Description: Failed to send email to '%s' with subject '%s': %v", to, subject, err)
		return fmt.Errorf("failed to send email: %v", err)
	}

	logging.Logger.Infof("Event ID: SEND_EMAIL_SUCCESS, Description: Email sent to '%s' with subject: '%s'", to, subject)
	return nil
}

// SendPasswordResetEmail mails the reset link containing a short-lived token.
func SendPasswordResetEmail(to, token string) error {
	baseURL := os.Getenv("FRONTEND_URL")
	if baseURL == "" {
		baseURL = "https://localhost:4200"
	}
	subject := "Password reset"
	body := fmt.Sprintf(`You requested a password reset.<br>Follow <a href="%s/reset-password?token=%s">this link</a> to choose a new password.`, baseURL, token)
	return SendEmail(to, subject, body)
}
