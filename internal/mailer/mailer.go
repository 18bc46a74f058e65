package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrNotConfigured возвращается, если отправка почты не настроена.
var ErrNotConfigured = errors.New("mail sender is not configured")

// SendResult - итог отправки письма.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Message - письмо в формате HTML.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// EmailSender отправляет письма.
type EmailSender interface {
	Send(ctx context.Context, msg Message) (SendResult, error)
}

// sendFunc совпадает с сигнатурой smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender отправляет письма через SMTP-сервер.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	send     sendFunc
}

// NewSMTPSender создаёт отправителя с явно переданными параметрами.
func NewSMTPSender(host string, port int, username, password, from string) (*SMTPSender, error) {
	if host == "" {
		return nil, fmt.Errorf("%w: SMTP host is empty", ErrNotConfigured)
	}
	if port <= 0 {
		return nil, fmt.Errorf("%w: SMTP port is invalid", ErrNotConfigured)
	}
	if from == "" {
		return nil, fmt.Errorf("%w: sender address is empty", ErrNotConfigured)
	}

	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		send:     smtp.SendMail,
	}, nil
}

// Send отправляет письмо. smtp.SendMail не принимает контекст,
// поэтому отменённый контекст проверяется только до отправки.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (SendResult, error) {
	if err := ctx.Err(); err != nil {
		return SendResult{}, err
	}

	addr := s.host + ":" + strconv.Itoa(s.port)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	messageID := ulid.Make().String()
	if err := s.send(addr, auth, s.from, []string{msg.To}, buildMessage(s.from, messageID, s.host, msg)); err != nil {
		return SendResult{}, fmt.Errorf("smtp send failed: %w", err)
	}

	return SendResult{
		MessageID: messageID,
		SentAt:    time.Now(),
	}, nil
}

func buildMessage(from, messageID, host string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("Message-ID: <" + messageID + "@" + host + ">\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}
