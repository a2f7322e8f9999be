// ruleflow/pkg/integrations/smtp_mailer.go

package integrations

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"rulehub/ruleflow/pkg/action"
	"rulehub/ruleflow/pkg/logging"
)

// SMTPMailer delivers email actions over plain SMTP.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	timeout  time.Duration
}

func NewSMTPMailer(host string, port int, username, password, from string, timeout time.Duration) *SMTPMailer {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		timeout:  timeout,
	}
}

func (m *SMTPMailer) SendEmail(ctx context.Context, to, subject, body string) *action.IntegrationResult {
	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	message := m.buildMessage(to, subject, body)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.from, []string{to}, []byte(message))
	}()

	// smtp.SendMail has no context hook; bound it ourselves.
	sendCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	select {
	case err := <-done:
		if err != nil {
			logging.Logger.Warn().Err(err).Str("to", to).Msg("SMTP send failed")
			return &action.IntegrationResult{Success: false, Error: err.Error()}
		}
		return &action.IntegrationResult{
			Success: true,
			Data:    map[string]interface{}{"to": to, "subject": subject},
		}
	case <-sendCtx.Done():
		logging.Logger.Warn().Str("to", to).Msg("SMTP send timed out")
		return &action.IntegrationResult{Success: false, Error: "smtp send timed out"}
	}
}

func (m *SMTPMailer) buildMessage(to, subject, body string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", m.from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", to))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return sb.String()
}
