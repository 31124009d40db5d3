// Package services содержит сервис отправки писем с подтверждением подписки.
package services

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/magabrotheeeer/newsletter-optin/internal/lib/sl"
	"github.com/magabrotheeeer/newsletter-optin/internal/lib/smtp"
)

// Reason классифицирует причину сбоя отправки письма.
type Reason string

// Категории сбоев отправки.
const (
	ReasonAuth       Reason = "auth"
	ReasonConnection Reason = "connection"
	ReasonTimeout    Reason = "timeout"
	ReasonOther      Reason = "other"
)

// SendError описывает сбой отправки письма с категорией причины.
type SendError struct {
	Reason Reason
	Err    error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send failed (%s): %v", e.Reason, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// SenderService отправляет письма с подтверждением подписки по SMTP.
type SenderService struct {
	transport smtp.TransportInterface
	publicURL string
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
// publicURL — внешний адрес сервиса, из него строится ссылка подтверждения.
func NewSenderService(transport smtp.TransportInterface, publicURL string, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log,
	}
}

// ConfirmationLink строит ссылку подтверждения для выданного токена.
func (s *SenderService) ConfirmationLink(token string) string {
	return s.publicURL + "/api/v1/subscriptions/confirm?token=" + url.QueryEscape(token)
}

// SendConfirmation отправляет письмо со ссылкой подтверждения на указанный адрес.
func (s *SenderService) SendConfirmation(to, token string) error {
	link := s.ConfirmationLink(token)
	subject := "Please confirm your subscription"
	bodyText := fmt.Sprintf(`Hello!

Someone (hopefully you) asked to subscribe this address to our newsletter.

To confirm the subscription, follow the link: %s

If it was not you, just ignore this message.`, link)

	if err := s.sendEmail([]string{to}, subject, bodyText); err != nil {
		return &SendError{Reason: classify(err), Err: err}
	}
	return nil
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", "error", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("failed to write email body", "error", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", "error", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", "error", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}

// classify определяет категорию сбоя по цепочке ошибок.
func classify(err error) Reason {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ReasonConnection
	}
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) && (protoErr.Code == 534 || protoErr.Code == 535) {
		return ReasonAuth
	}
	if strings.Contains(err.Error(), "auth") {
		return ReasonAuth
	}
	return ReasonOther
}
