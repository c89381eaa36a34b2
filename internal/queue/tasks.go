package queue

import (
	"encoding/json"
	"errors"

	"github.com/ibheros/studio/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskTutorApplicationEmail 导师申请邮件转发任务
	TaskTutorApplicationEmail = constants.TaskTutorApplicationEmail
)

// AttachmentPayload 邮件附件载荷，Data 以 base64 序列化
type AttachmentPayload struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// EmailPayload 邮件任务载荷
type EmailPayload struct {
	To          []string            `json:"to"`
	ReplyTo     string              `json:"reply_to,omitempty"`
	Subject     string              `json:"subject"`
	HTMLBody    string              `json:"html_body"`
	Attachments []AttachmentPayload `json:"attachments,omitempty"`
}

// NewTutorApplicationEmailTask 创建导师申请邮件任务
func NewTutorApplicationEmailTask(payload EmailPayload) (*asynq.Task, error) {
	if len(payload.To) == 0 {
		return nil, errors.New("email payload has no recipient")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTutorApplicationEmail, body), nil
}

// ParseEmailPayload 解析邮件任务载荷
func ParseEmailPayload(task *asynq.Task) (EmailPayload, error) {
	var payload EmailPayload
	if task == nil {
		return payload, errors.New("task is nil")
	}
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}
