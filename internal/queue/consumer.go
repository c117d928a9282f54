// Package queue contains the background consumer that listens to the
// password_reset.requested queue and delivers the recovery code by mail.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/willianramosdev-stack/todoApp/internal/config"
)

// ResetQueueName is the durable queue carrying password reset events.
const ResetQueueName = "password_reset.requested"

// StartResetMailConsumer connects to the broker from cfg, declares the
// password_reset.requested queue (durable), and starts consuming messages.
// Each event is delivered by SMTP when an SMTP host is configured and always
// appended to logs/email.log in a single-line, human-friendly format. The
// function runs a reconnect loop; it keeps running and logs any processing
// errors while rejecting the offending message so the server continues
// operating.
func StartResetMailConsumer(cfg config.Config) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			log.Printf("reset-mail-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(cfg, conn); err != nil {
			log.Printf("reset-mail-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(cfg config.Config, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("reset-mail-consumer: set QoS failed: %v", err)
	}

	_, err = ch.QueueDeclare(ResetQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(ResetQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(cfg, d.Body); err != nil {
			log.Printf("reset-mail-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(cfg config.Config, body []byte) error {
	var ev PasswordResetRequestedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := sendMail(cfg, ev); err != nil {
		// Logged but not fatal for the message: the code stays redeemable
		// until it expires, and the dispatch attempt is still recorded.
		log.Printf("reset-mail-consumer: smtp send failed: %v", err)
	}
	return appendLog(ev)
}

// sendMail delivers the recovery code over SMTP. Delivery is skipped when
// no SMTP host is configured (local development).
func sendMail(cfg config.Config, ev PasswordResetRequestedEvent) error {
	if cfg.SMTPHost == "" {
		return nil
	}

	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Recovery Code\r\n\r\n"+
		"Recovery Code: %s expires in 15 minutes!\r\n", cfg.SMTPFrom, ev.Email, ev.Code)
	return smtp.SendMail(cfg.SMTPHost+":"+cfg.SMTPPort, auth, cfg.SMTPFrom, []string{ev.Email}, []byte(msg))
}

// appendLog records the dispatch in logs/email.log.
func appendLog(ev PasswordResetRequestedEvent) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "email.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s reset code issued user=%d email=%s expires=%s\n",
		time.Now().UTC().Format(time.RFC3339), ev.UserID, ev.Email, ev.ExpiresAt)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log file: %w", err)
	}
	return nil
}
