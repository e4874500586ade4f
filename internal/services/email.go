package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/claridoc/backend/internal/models"
	"github.com/claridoc/backend/pkg/logger"
	"gorm.io/gorm"
)

type EmailService struct {
	db *gorm.DB
}

type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

func NewEmailService(db *gorm.DB) *EmailService {
	return &EmailService{db: db}
}

func (s *EmailService) GetConfig() *EmailConfig {
	config := &EmailConfig{}

	var configs []models.SystemConfig
	s.db.Where("`group` = ?", "email").Find(&configs)

	for _, c := range configs {
		switch c.Key {
		case "email_enabled":
			config.Enabled = c.Value == "true"
		case "email_host":
			config.Host = c.Value
		case "email_port":
			if port, err := strconv.Atoi(c.Value); err == nil {
				config.Port = port
			}
		case "email_username":
			config.Username = c.Value
		case "email_password":
			config.Password = c.Value
		case "email_from":
			config.From = c.Value
		case "email_use_tls":
			config.UseTLS = c.Value == "true"
		}
	}

	if config.Port == 0 {
		config.Port = 587
	}

	return config
}

// ProcessInvitationEmail satisfies the task queue processor signature.
func (s *EmailService) ProcessInvitationEmail(ctx context.Context, task *EmailTask) error {
	return s.SendInvitation(task)
}

// SendInvitation delivers an invitation email. Returns nil when email
// delivery is disabled so invitation creation never fails on mail config.
func (s *EmailService) SendInvitation(task *EmailTask) error {
	config := s.GetConfig()
	if !config.Enabled || config.Host == "" {
		logger.Infof("[Email] Delivery disabled, skipping invitation mail to %s", task.To)
		return nil
	}

	subject := fmt.Sprintf("[ClariDoc] You've been invited to join %s", task.OrgName)
	body := s.buildInvitationBody(task)

	return s.sendEmail(config, []string{task.To}, subject, body)
}

func (s *EmailService) buildInvitationBody(task *EmailTask) string {
	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString("<h2>You've been invited</h2>")
	sb.WriteString(fmt.Sprintf("<p>You have been invited to join <b>%s</b> on ClariDoc as <b>%s</b>.</p>", task.OrgName, task.Role))
	sb.WriteString(fmt.Sprintf("<p><a href=\"%s\" style=\"display: inline-block; padding: 10px 20px; background: #2563eb; color: #fff; border-radius: 4px; text-decoration: none;\">Accept invitation</a></p>", task.InviteLink))
	sb.WriteString(fmt.Sprintf("<p style=\"color: #888;\">This invitation expires on %s.</p>", task.ExpiresAt.Format("Jan 2, 2006 15:04 MST")))
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">Powered by ClariDoc</p>")
	sb.WriteString("</body></html>")

	return sb.String()
}

func (s *EmailService) sendEmail(config *EmailConfig, to []string, subject, body string) error {
	from := config.From
	if from == "" {
		from = config.Username
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	var err error
	if config.UseTLS {
		err = s.sendEmailTLS(config, addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}

	if err != nil {
		logger.Infof("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent invitation to %v", to)
	return nil
}

func (s *EmailService) sendEmailTLS(config *EmailConfig, addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: config.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, config.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	_, err = w.Write([]byte(message))
	if err != nil {
		return err
	}

	return w.Close()
}
