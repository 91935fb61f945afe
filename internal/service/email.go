package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"

	"github.com/goonthug/sport-kursach/internal/config"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(cfg config.SMTPConfig) EmailService {
	return &emailService{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.User,
		password: cfg.Password,
		from:     cfg.From,
	}
}

func (s *emailService) SendRentalConfirmed(ctx context.Context, email, inventoryName string) error {
	subject := "Your rental is confirmed"
	body := fmt.Sprintf("Hello,\n\nYour rental of %s has been confirmed. You can pick up the equipment on the start date of your booking.\n\nBest regards,\nThe SportRent Team", inventoryName)
	return s.send(email, subject, body)
}

func (s *emailService) SendRentalRejected(ctx context.Context, email, inventoryName, reason string) error {
	subject := "Your rental request was declined"
	body := fmt.Sprintf("Hello,\n\nUnfortunately your rental request for %s was declined.\n\nReason: %s\n\nBest regards,\nThe SportRent Team", inventoryName, reason)
	return s.send(email, subject, body)
}

func (s *emailService) SendRentalCancelled(ctx context.Context, email, inventoryName string) error {
	subject := "Your rental was cancelled"
	body := fmt.Sprintf("Hello,\n\nYour rental of %s has been cancelled.\n\nBest regards,\nThe SportRent Team", inventoryName)
	return s.send(email, subject, body)
}

func (s *emailService) SendRentalCompleted(ctx context.Context, email, inventoryName string, total decimal.Decimal) error {
	subject := "Thank you for renting with us"
	body := fmt.Sprintf("Hello,\n\nYour rental of %s is complete. Total charged: %s.\n\nLoyalty points have been added to your account. We hope to see you again!\n\nBest regards,\nThe SportRent Team", inventoryName, total.StringFixed(2))
	return s.send(email, subject, body)
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}
