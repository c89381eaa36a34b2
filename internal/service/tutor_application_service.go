package service

import (
	"bytes"
	"context"
	"html/template"
	"net/mail"
	"strings"

	"github.com/ibheros/studio/internal/config"
	"github.com/ibheros/studio/internal/constants"
	"github.com/ibheros/studio/internal/logger"
	"github.com/ibheros/studio/internal/queue"
)

// TutorApplication 导师申请表单
type TutorApplication struct {
	FirstName     string
	LastName      string
	PreferredName string
	Email         string
	Phone         string
	CountryCity   string
	Intro         string
	Subjects      string
	IBScores      string
	ALevelScores  string
	ATAR          string
	University    string
	TeachingExp   string
	Strengths     string
	Achievements  string
	Photos        []EmailAttachment
	Transcripts   []EmailAttachment
}

// Validate 校验必填项与至少一张照片、一份成绩单
func (a TutorApplication) Validate() error {
	required := []string{
		a.FirstName, a.LastName, a.Email, a.CountryCity, a.Intro, a.Subjects,
		a.University, a.TeachingExp, a.Strengths, a.Achievements,
	}
	for _, value := range required {
		if strings.TrimSpace(value) == "" {
			return ErrMissingRequiredFields
		}
	}
	if len(a.Photos) == 0 || len(a.Transcripts) == 0 {
		return ErrMissingRequiredFields
	}
	return nil
}

var tutorApplicationTemplate = template.Must(template.New("tutor_application").Parse(`
<h1>New Tutor Application</h1>
<h2>Personal Information</h2>
<ul>
  <li><strong>Name:</strong> {{.FirstName}} {{.LastName}} (Preferred: {{or .PreferredName "N/A"}})</li>
  <li><strong>Email:</strong> {{.Email}}</li>
  <li><strong>Phone:</strong> {{or .Phone "N/A"}}</li>
  <li><strong>Location:</strong> {{.CountryCity}}</li>
</ul>
<p><strong>Introduction:</strong><br>{{.Intro}}</p>
<h2>Academic Information</h2>
<ul>
  <li><strong>Subjects:</strong> {{.Subjects}}</li>
  <li><strong>University:</strong> {{.University}}</li>
  <li><strong>IB Scores:</strong> {{or .IBScores "N/A"}}</li>
  <li><strong>A-Level Scores:</strong> {{or .ALevelScores "N/A"}}</li>
  <li><strong>ATAR:</strong> {{or .ATAR "N/A"}}</li>
</ul>
<h2>Experience &amp; Skills</h2>
<p><strong>Teaching Experience:</strong><br>{{.TeachingExp}}</p>
<p><strong>Strengths:</strong><br>{{.Strengths}}</p>
<p><strong>Achievements:</strong><br>{{.Achievements}}</p>
`))

// BuildTutorApplicationEmail 生成转发给团队的邮件
func BuildTutorApplicationEmail(recipient string, app TutorApplication) (EmailMessage, error) {
	var body bytes.Buffer
	if err := tutorApplicationTemplate.Execute(&body, app); err != nil {
		return EmailMessage{}, err
	}
	attachments := make([]EmailAttachment, 0, len(app.Photos)+len(app.Transcripts))
	for _, photo := range app.Photos {
		photo.Filename = constants.TutorAttachmentPhotoPrefix + photo.Filename
		attachments = append(attachments, photo)
	}
	for _, transcript := range app.Transcripts {
		transcript.Filename = constants.TutorAttachmentTranscriptPrefix + transcript.Filename
		attachments = append(attachments, transcript)
	}
	replyTo := ""
	if addr, err := mail.ParseAddress(strings.TrimSpace(app.Email)); err == nil {
		replyTo = addr.Address
	}
	return EmailMessage{
		To:          []string{recipient},
		ReplyTo:     replyTo,
		Subject:     "New Tutor Application: " + app.FirstName + " " + app.LastName,
		HTMLBody:    body.String(),
		Attachments: attachments,
	}, nil
}

// TutorApplicationService 导师申请转发服务
type TutorApplicationService struct {
	cfg   config.ApplicationConfig
	email *EmailService
	queue *queue.Client
}

// NewTutorApplicationService 创建导师申请服务
func NewTutorApplicationService(cfg config.ApplicationConfig, email *EmailService, queueClient *queue.Client) *TutorApplicationService {
	return &TutorApplicationService{cfg: cfg, email: email, queue: queueClient}
}

// Submit 校验申请并转发邮件，队列可用时异步投递
func (s *TutorApplicationService) Submit(ctx context.Context, app TutorApplication) error {
	if err := app.Validate(); err != nil {
		return err
	}
	recipient := strings.TrimSpace(s.cfg.Recipient)
	if recipient == "" {
		return ErrApplicationRecipientEmpty
	}
	msg, err := BuildTutorApplicationEmail(recipient, app)
	if err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	if s.queue.Enabled() {
		taskID, err := s.queue.EnqueueTutorApplicationEmail(ToEmailPayload(msg))
		if err != nil {
			return err
		}
		log.Infow("tutor_application_enqueued", "task_id", taskID, "attachments", len(msg.Attachments))
		return nil
	}
	if err := s.email.Send(msg); err != nil {
		return err
	}
	log.Infow("tutor_application_sent", "attachments", len(msg.Attachments))
	return nil
}

// ToEmailPayload 转换为队列载荷
func ToEmailPayload(msg EmailMessage) queue.EmailPayload {
	attachments := make([]queue.AttachmentPayload, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		attachments = append(attachments, queue.AttachmentPayload{
			Filename:    att.Filename,
			ContentType: att.ContentType,
			Data:        att.Data,
		})
	}
	return queue.EmailPayload{
		To:          msg.To,
		ReplyTo:     msg.ReplyTo,
		Subject:     msg.Subject,
		HTMLBody:    msg.HTMLBody,
		Attachments: attachments,
	}
}

// FromEmailPayload 从队列载荷还原邮件
func FromEmailPayload(payload queue.EmailPayload) EmailMessage {
	attachments := make([]EmailAttachment, 0, len(payload.Attachments))
	for _, att := range payload.Attachments {
		attachments = append(attachments, EmailAttachment{
			Filename:    att.Filename,
			ContentType: att.ContentType,
			Data:        att.Data,
		})
	}
	return EmailMessage{
		To:          payload.To,
		ReplyTo:     payload.ReplyTo,
		Subject:     payload.Subject,
		HTMLBody:    payload.HTMLBody,
		Attachments: attachments,
	}
}
