package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"talenthub/internal/config"
	"talenthub/internal/worker"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SMTPSender delivers messages through an SMTP relay.
type SMTPSender struct {
	cfg config.MailConfig
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, m.Body)

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// LogSender writes messages to the log instead of sending them. It is used
// when no SMTP host is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, m Message) error {
	s.logger.Info("mail not sent, smtp disabled",
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
		zap.String("body", m.Body),
	)
	return nil
}

// Mailer composes account emails and hands them to a worker pool so request
// handlers never wait on SMTP.
type Mailer struct {
	sender  Sender
	pool    *worker.Pool
	appName string
	timeout time.Duration
}

func NewMailer(sender Sender, pool *worker.Pool, appName string) *Mailer {
	return &Mailer{sender: sender, pool: pool, appName: appName, timeout: 30 * time.Second}
}

func (m *Mailer) SendOTP(_ context.Context, to, fullName, code string, ttl time.Duration) error {
	msg := Message{
		To:      to,
		Subject: fmt.Sprintf("%s verification code: %s", m.appName, code),
		Body:    otpBody(m.appName, fullName, code, ttl),
	}
	return m.pool.Submit(worker.Task{
		Name: "mail.otp",
		Run: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()
			return m.sender.Send(ctx, msg)
		},
	})
}

func otpBody(appName, fullName, code string, ttl time.Duration) string {
	name := strings.TrimSpace(fullName)
	if name == "" {
		name = "there"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Your %s verification code is %s.\n", appName, code)
	fmt.Fprintf(&b, "It expires in %d minutes.\n\n", int(ttl.Round(time.Minute)/time.Minute))
	b.WriteString("If you did not request this code you can ignore this email.\n")
	return b.String()
}
