package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/BrewPassApp/BrewPass/internal/pkg/env"
)

// SendMail sends an HTML email via SMTP.
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// SendRedemptionDecisionMail notifies a customer about an admin decision
// on one of their redemption requests.
func SendRedemptionDecisionMail(to, orderID, status string) error {
	subject := fmt.Sprintf("Your redemption request %s was %s", orderID, status)
	body := fmt.Sprintf(
		"<p>Hi,</p><p>your redemption request <strong>%s</strong> has been <strong>%s</strong>.</p>"+
			"<p>You can review the current status any time in your BrewPass account.</p>",
		orderID, status,
	)
	return SendMail(to, subject, body)
}
