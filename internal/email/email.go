package email

import (
	"gopkg.in/gomail.v2"

	"github.com/dangkhoa18052004/hospital-api/pkg/logger"
)

// Sender delivers transactional mail. Delivery is best effort; callers
// must not fail their own operation on a send error.
type Sender interface {
	Send(to, subject, body string) error
}

type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
	logger *logger.Logger
}

func NewSMTPSender(cfg Config, l *logger.Logger) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: l,
	}
}

func (s *smtpSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error(err, "failed to send email", "to", to, "subject", subject)
		return err
	}
	return nil
}

// NoopSender discards mail. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) Send(string, string, string) error { return nil }
