package queue

import (
	"testing"

	"github.com/ibheros/studio/internal/config"
)

func TestTutorApplicationTaskRoundTrip(t *testing.T) {
	task, err := NewTutorApplicationEmailTask(EmailPayload{
		To:      []string{"team@example.com"},
		Subject: "New Tutor Application: Ada Lovelace",
		Attachments: []AttachmentPayload{
			{Filename: "photo-ada.png", ContentType: "image/png", Data: []byte{0x89, 0x50}},
		},
	})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskTutorApplicationEmail {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	payload, err := ParseEmailPayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if len(payload.Attachments) != 1 || string(payload.Attachments[0].Data) != "\x89P" {
		t.Fatalf("attachment bytes must survive serialization: %+v", payload.Attachments)
	}
}

func TestNewTaskRequiresRecipient(t *testing.T) {
	if _, err := NewTutorApplicationEmailTask(EmailPayload{Subject: "x"}); err == nil {
		t.Fatalf("expected error without recipient")
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client must be disabled")
	}
	id, err := client.EnqueueTutorApplicationEmail(EmailPayload{To: []string{"a@b.c"}})
	if err != nil || id != "" {
		t.Fatalf("disabled enqueue should be noop, got id=%q err=%v", id, err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380, DB: 2})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 5 || cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}
