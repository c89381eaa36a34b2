package service

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"

	"github.com/ibheros/studio/internal/config"
)

func TestBuildMIMEMessageWithAttachments(t *testing.T) {
	msg := EmailMessage{
		To:       []string{"team@example.com"},
		ReplyTo:  "ada@example.com",
		Subject:  "New Tutor Application: Ada Lovelace",
		HTMLBody: "<h1>hello</h1>",
		Attachments: []EmailAttachment{
			{Filename: "photo-me.jpg", ContentType: "image/jpeg", Data: bytes.Repeat([]byte{0xff}, 200)},
			{Filename: "transcript-grades.pdf", Data: []byte("%PDF-1.4")},
		},
	}
	raw, err := buildMIMEMessage(buildFromAddress("noreply@example.com", "Studio"), msg)
	if err != nil {
		t.Fatalf("build mime failed: %v", err)
	}

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("read message failed: %v", err)
	}
	if got := parsed.Header.Get("Reply-To"); got != "ada@example.com" {
		t.Fatalf("unexpected reply-to: %s", got)
	}
	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	if err != nil || subject != msg.Subject {
		t.Fatalf("unexpected subject: %q err=%v", subject, err)
	}
	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/mixed" {
		t.Fatalf("unexpected content type: %s err=%v", mediaType, err)
	}

	reader := multipart.NewReader(parsed.Body, params["boundary"])
	var names []string
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("next part failed: %v", err)
		}
		body, _ := io.ReadAll(part)
		for _, line := range strings.Split(strings.TrimSpace(string(body)), "\r\n") {
			if len(line) > 76 {
				t.Fatalf("base64 line exceeds 76 chars: %d", len(line))
			}
		}
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(body), "\r\n", ""))
		if err != nil {
			t.Fatalf("decode part failed: %v", err)
		}
		if part.FileName() == "" {
			if string(decoded) != msg.HTMLBody {
				t.Fatalf("unexpected html body: %s", decoded)
			}
			continue
		}
		names = append(names, part.FileName())
		if part.FileName() == "transcript-grades.pdf" && part.Header.Get("Content-Type") != "application/octet-stream; name=transcript-grades.pdf" {
			t.Fatalf("expected default attachment type, got %s", part.Header.Get("Content-Type"))
		}
	}
	if strings.Join(names, ",") != "photo-me.jpg,transcript-grades.pdf" {
		t.Fatalf("unexpected attachments: %v", names)
	}
}

func TestEmailServiceSendPreconditions(t *testing.T) {
	disabled := NewEmailService(&config.EmailConfig{})
	if err := disabled.Send(EmailMessage{To: []string{"a@example.com"}}); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("expected ErrEmailServiceDisabled, got %v", err)
	}
	unconfigured := NewEmailService(&config.EmailConfig{Enabled: true})
	if err := unconfigured.Send(EmailMessage{To: []string{"a@example.com"}}); !errors.Is(err, ErrEmailServiceNotConfigured) {
		t.Fatalf("expected ErrEmailServiceNotConfigured, got %v", err)
	}
	svc := NewEmailService(&config.EmailConfig{Enabled: true, Host: "smtp.example.com", Port: 25, From: "noreply@example.com"})
	if err := svc.Send(EmailMessage{To: []string{"not-an-address"}}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestNormalizeEmailSendError(t *testing.T) {
	if err := normalizeEmailSendError(errors.New("550 5.1.1 Recipient address rejected")); !errors.Is(err, ErrEmailRecipientRejected) {
		t.Fatalf("expected ErrEmailRecipientRejected, got %v", err)
	}
	other := errors.New("connection reset")
	if err := normalizeEmailSendError(other); err != other {
		t.Fatalf("unexpected error mapping: %v", err)
	}
}
