// Package services содержит отправку транзакционных писем:
// решения модерации и уведомления о новых комментариях.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/launchboard/launch-board/internal/lib/sl"
	"github.com/launchboard/launch-board/internal/lib/smtp"
	"github.com/launchboard/launch-board/internal/models"
)

// SenderService отправляет письма по сообщениям из очередей уведомлений.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendProductStatusEmail отправляет владельцу продукта письмо о решении
// модерации: одобрение или отклонение, ровно одно письмо на сообщение.
func (s *SenderService) SendProductStatusEmail(body []byte) error {
	var message models.ProductStatusInfo
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	var subject, bodyText string
	switch message.Status {
	case models.ProductStatusApproved:
		subject = fmt.Sprintf("Ваш продукт %s одобрен", message.ProductName)
		bodyText = fmt.Sprintf("Здравствуйте!\n\nПродукт %s прошел модерацию и попадет в ближайший еженедельный запуск.",
			message.ProductName)
	case models.ProductStatusRejected:
		subject = fmt.Sprintf("Ваш продукт %s отклонен", message.ProductName)
		bodyText = fmt.Sprintf("Здравствуйте!\n\nК сожалению, продукт %s не прошел модерацию.", message.ProductName)
		if message.AdminNotes != "" {
			bodyText += "\n\nКомментарий модератора: " + message.AdminNotes
		}
	default:
		return fmt.Errorf("unknown product status: %s", message.Status)
	}

	return s.sendEmail(to, subject, bodyText)
}

// SendNewCommentEmail отправляет владельцу продукта письмо о новом комментарии.
func (s *SenderService) SendNewCommentEmail(body []byte) error {
	var message models.CommentInfo
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := fmt.Sprintf("Новый комментарий к продукту %s", message.ProductName)
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nПользователь %s оставил комментарий к вашему продукту %s:\n\n%s",
		message.OwnerUsername, message.AuthorUsername, message.ProductName, message.Content)

	return s.sendEmail(to, subject, bodyText)
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
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
