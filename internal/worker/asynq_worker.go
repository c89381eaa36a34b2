package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/ibheros/studio/internal/logger"
	"github.com/ibheros/studio/internal/provider"
	"github.com/ibheros/studio/internal/queue"
	"github.com/ibheros/studio/internal/service"

	"github.com/hibiken/asynq"
)

// EmailSender 邮件发送能力
type EmailSender interface {
	Send(msg service.EmailMessage) error
}

// Consumer 异步任务消费者
type Consumer struct {
	mailer EmailSender
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	if c == nil || c.EmailService == nil {
		return &Consumer{}
	}
	return &Consumer{mailer: c.EmailService}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskTutorApplicationEmail, c.handleTutorApplicationEmail)
}

func (c *Consumer) handleTutorApplicationEmail(ctx context.Context, task *asynq.Task) error {
	log := logger.FromContext(ctx)
	payload, err := queue.ParseEmailPayload(task)
	if err != nil {
		log.Warnw("worker_tutor_application_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if len(payload.To) == 0 {
		log.Debugw("worker_tutor_application_skip_no_recipient", "subject", payload.Subject)
		return nil
	}
	if c.mailer == nil {
		return fmt.Errorf("%w: email sender not configured", asynq.SkipRetry)
	}

	if err := c.mailer.Send(service.FromEmailPayload(payload)); err != nil {
		if isPermanentEmailError(err) {
			log.Warnw("worker_tutor_application_send_dropped", "to", payload.To, "error", err)
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		log.Warnw("worker_tutor_application_send_failed", "to", payload.To, "error", err)
		return err
	}
	log.Infow("worker_tutor_application_sent", "to", payload.To, "attachments", len(payload.Attachments))
	return nil
}

// isPermanentEmailError 配置缺失或收件人被拒时重试无意义
func isPermanentEmailError(err error) bool {
	return errors.Is(err, service.ErrEmailServiceDisabled) ||
		errors.Is(err, service.ErrEmailServiceNotConfigured) ||
		errors.Is(err, service.ErrInvalidEmail) ||
		errors.Is(err, service.ErrEmailRecipientRejected)
}
