package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Sender delivers HTML mail over SMTP.
type Sender struct {
	host     string
	port     string
	from     string
	password string

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSender(host, port, from, password string) *Sender {
	return &Sender{
		host:     host,
		port:     port,
		from:     from,
		password: password,
		sendMail: smtp.SendMail,
	}
}

// SendHTML sends an HTML email to a single recipient.
func (s *Sender) SendHTML(to, subject, body string) error {
	if s.host == "" {
		return fmt.Errorf("smtp host is not configured")
	}
	auth := smtp.PlainAuth("", s.from, s.password, s.host)

	msg := []byte("From: " + s.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + sanitizeHeader(subject) + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" + body + "\r\n")

	address := s.host + ":" + s.port

	err := s.sendMail(address, auth, s.from, []string{to}, msg)
	if err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
