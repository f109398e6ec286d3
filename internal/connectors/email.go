/*-------------------------------------------------------------------------
 *
 * email.go
 *    Email connector for approved alert delivery
 *
 * Sends an approved email action over SMTP with plain authentication.
 * A sendFunc indirection keeps delivery testable without a live SMTP
 * server.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/connectors/email.go
 *
 *-------------------------------------------------------------------------
 */

package connectors

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/knowledgedesk/KnowledgeDesk/internal/config"
	"github.com/knowledgedesk/KnowledgeDesk/internal/db"
)

/* sendFunc matches smtp.SendMail */
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

/* EmailConnector sends approved alert emails over SMTP */
type EmailConnector struct {
	host           string
	port           int
	username       string
	password       string
	from           string
	alertRecipient string
	send           sendFunc
}

/* NewEmailConnector creates a new email connector */
func NewEmailConnector(cfg config.SMTPConfig) *EmailConnector {
	return &EmailConnector{
		host:           cfg.Host,
		port:           cfg.Port,
		username:       cfg.Username,
		password:       cfg.Password,
		from:           cfg.From,
		alertRecipient: cfg.AlertRecipient,
		send:           smtp.SendMail,
	}
}

/* Type returns the action type this connector handles */
func (c *EmailConnector) Type() db.ActionType {
	return db.ActionTypeSendEmail
}

/* Service returns the target-service identifier */
func (c *EmailConnector) Service() string {
	return "smtp"
}

/* Configured reports whether the connector holds SMTP credentials */
func (c *EmailConnector) Configured() bool {
	return c.host != "" && c.port > 0 && c.from != ""
}

/* Deliver sends one alert email from the action payload */
func (c *EmailConnector) Deliver(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("email connector not configured: host_set=%t, from_set=%t",
			c.host != "", c.from != "")
	}

	recipient := stringField(payload, "recipient")
	if recipient == "" {
		recipient = c.alertRecipient
	}
	if !strings.Contains(recipient, "@") {
		return nil, fmt.Errorf("email delivery failed: invalid recipient='%s'", recipient)
	}

	body := stringField(payload, "description")
	subject := "Alert from KnowledgeDesk"
	if priority := stringField(payload, "priority"); priority != "" {
		subject = fmt.Sprintf("[%s] %s", strings.ToUpper(priority), subject)
	}

	msg := fmt.Sprintf("From: %s\r\n", c.from)
	msg += fmt.Sprintf("To: %s\r\n", recipient)
	msg += fmt.Sprintf("Subject: %s\r\n", subject)
	msg += "\r\n"
	msg += body

	auth := smtp.PlainAuth("", c.username, c.password, c.host)
	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	if err := c.send(addr, auth, c.from, []string{recipient}, []byte(msg)); err != nil {
		return nil, fmt.Errorf("email send failed: to='%s', subject='%s', error=%w", recipient, subject, err)
	}

	return map[string]interface{}{
		"recipient":    recipient,
		"subject":      subject,
		"delivered_at": time.Now().UTC().Format(time.RFC3339),
	}, nil
}
