package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-finder/config"
	"github.com/oksasatya/go-event-finder/pkg/helpers"
	"github.com/oksasatya/go-event-finder/pkg/mailer"
	mailtpl "github.com/oksasatya/go-event-finder/pkg/mailer/templates"
)

var errNoRecipient = errors.New("job has no recipient")

type sender interface {
	Send(ctx context.Context, msg mailer.Message) (string, error)
}

// renderJob turns a queued job into a message, rendering the named template when set.
func renderJob(job mailer.EmailJob) (mailer.Message, error) {
	if strings.TrimSpace(job.To) == "" {
		return mailer.Message{}, errNoRecipient
	}
	msg := mailer.Message{To: job.To, Subject: job.Subject, Text: job.Text, HTML: job.HTML, Tag: job.Template}
	if job.Template == "" {
		return msg, nil
	}
	var err error
	msg.Subject, msg.Text, msg.HTML, err = mailtpl.Render(job.Template, job.Data)
	return msg, err
}

// handle processes one queue message. requeue is true only for delivery
// failures; malformed or unrenderable jobs are dropped.
func handle(ctx context.Context, logger *logrus.Logger, s sender, body []byte) (requeue bool, err error) {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return false, fmt.Errorf("decode job -> %w", err)
	}
	msg, err := renderJob(job)
	if err != nil {
		return false, fmt.Errorf("render %q -> %w", job.Template, err)
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	id, err := s.Send(c, msg)
	if err != nil {
		return true, fmt.Errorf("send -> %w", err)
	}
	logger.WithFields(logrus.Fields{"template": job.Template, "mailgun_id": id}).Debug("email sent")
	return false, nil
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQEmailQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			requeue, err := handle(ctx, logger, mg, msg.Body)
			if err != nil {
				helpers.LogWarn(logger, "email job failed", err, logrus.Fields{"requeue": requeue})
				_ = msg.Nack(false, requeue)
				continue
			}
			_ = msg.Ack(false)
		}
		close(done)
	}()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	<-stop
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
