package public

import (
	"errors"
	"strings"

	"github.com/ibheros/studio/internal/http/handlers/shared"
	"github.com/ibheros/studio/internal/http/response"
	"github.com/ibheros/studio/internal/i18n"
	"github.com/ibheros/studio/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	tutorPhotoField      = "photo"
	tutorTranscriptField = "transcripts"
)

// SubmitTutorApplication 接收导师申请表单并转发邮件
func (h *Handler) SubmitTutorApplication(c *gin.Context) {
	if h.Config.Application.RequireCaptcha {
		payload := shared.CaptchaFromForm(c)
		if err := h.CaptchaService.Verify(payload.CaptchaID, payload.CaptchaCode); err != nil {
			if errors.Is(err, service.ErrCaptchaRequired) {
				respondError(c, response.CodeBadRequest, "error.captcha_required", nil)
				return
			}
			respondError(c, response.CodeBadRequest, "error.captcha_invalid", nil)
			return
		}
	}

	maxBytes := h.Config.Application.MaxAttachmentBytes
	photos, err := shared.ReadStagedFiles(c, tutorPhotoField, maxBytes)
	if err != nil {
		respondTutorFileError(c, err)
		return
	}
	transcripts, err := shared.ReadStagedFiles(c, tutorTranscriptField, maxBytes)
	if err != nil {
		respondTutorFileError(c, err)
		return
	}

	app := service.TutorApplication{
		FirstName:     formValue(c, "firstName"),
		LastName:      formValue(c, "lastName"),
		PreferredName: formValue(c, "preferredName"),
		Email:         formValue(c, "email"),
		Phone:         formValue(c, "phone"),
		CountryCity:   formValue(c, "countryCity"),
		Intro:         formValue(c, "intro"),
		Subjects:      formValue(c, "subjects"),
		IBScores:      formValue(c, "ibScores"),
		ALevelScores:  formValue(c, "aLevelScores"),
		ATAR:          formValue(c, "atar"),
		University:    formValue(c, "university"),
		TeachingExp:   formValue(c, "teachingExp"),
		Strengths:     formValue(c, "strengths"),
		Achievements:  formValue(c, "achievements"),
		Photos:        toAttachments(photos),
		Transcripts:   toAttachments(transcripts),
	}

	if err := h.TutorApplicationService.Submit(c.Request.Context(), app); err != nil {
		if errors.Is(err, service.ErrMissingRequiredFields) {
			respondError(c, response.CodeBadRequest, "error.missing_required_fields", err)
			return
		}
		respondError(c, response.CodeInternal, "error.application_send_failed", err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.application_received"), gin.H{"success": true})
}

func respondTutorFileError(c *gin.Context, err error) {
	if errors.Is(err, shared.ErrFileTooLarge) {
		respondError(c, response.CodePayloadTooLarge, "error.media_too_large", err)
		return
	}
	respondError(c, response.CodeBadRequest, "error.missing_required_fields", err)
}

func formValue(c *gin.Context, key string) string {
	return strings.TrimSpace(c.PostForm(key))
}

func toAttachments(files []*service.StagedFile) []service.EmailAttachment {
	attachments := make([]service.EmailAttachment, 0, len(files))
	for _, file := range files {
		attachments = append(attachments, service.EmailAttachment{
			Filename:    file.Name,
			ContentType: file.ContentType,
			Data:        file.Data,
		})
	}
	return attachments
}
