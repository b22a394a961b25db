package services

import (
	"context"
	"fmt"

	"github.com/Dias221467/Activity_Notifier/pkg/logger"
	"github.com/sirupsen/logrus"
)

// TemplateRenderer renders a named email body.
type TemplateRenderer interface {
	Render(name string, data map[string]any) (string, error)
}

// HTMLSender delivers a rendered email.
type HTMLSender interface {
	SendHTML(to, subject, body string) error
}

// EmailService renders notification emails and hands them to the mail server.
type EmailService struct {
	renderer TemplateRenderer
	sender   HTMLSender
}

func NewEmailService(renderer TemplateRenderer, sender HTMLSender) *EmailService {
	return &EmailService{renderer: renderer, sender: sender}
}

// SendEmail renders templateName with payload and sends it to recipient.
// Job status mails are rendered with isJobStatusEmail set so the template can
// show the import summary instead of a product card.
func (s *EmailService) SendEmail(ctx context.Context, recipient string, isJobStatusEmail bool, subject string, payload map[string]any, templateName string) error {
	if templateName == "" {
		return fmt.Errorf("no email template for %s", recipient)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := copyMap(payload)
	data["isJobStatusEmail"] = isJobStatusEmail
	data["subject"] = subject

	body, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", templateName, err)
	}
	if err := s.sender.SendHTML(recipient, subject, body); err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{
		"recipient": recipient,
		"template":  templateName,
		"job":       isJobStatusEmail,
	}).Info("Email sent")
	return nil
}
