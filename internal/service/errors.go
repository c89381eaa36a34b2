package service

import "errors"

// 通用错误
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// 内容与上传表单错误
var (
	ErrTitleRequired     = errors.New("title is required")
	ErrContentRequired   = errors.New("content is required")
	ErrInvalidMediaURL   = errors.New("media url must be a persisted address")
	ErrFormNotImage      = errors.New("selected file is not an image")
	ErrFormNotVideo      = errors.New("selected file is not a video")
	ErrMediaTooLarge     = errors.New("media file is too large")
	ErrMediaUploadFailed = errors.New("media upload failed")
	ErrFormSubmitting    = errors.New("form is being submitted")
	ErrFormNotFound      = errors.New("form session not found")
	ErrFormClosed        = errors.New("form session closed")
	ErrPreviewNotFound   = errors.New("preview reference not found")
)

// 下载代理错误
var (
	ErrDownloadURLMissing = errors.New("missing url parameter")
	ErrDownloadURLInvalid = errors.New("download url is not allowed")
	ErrDownloadTooLarge   = errors.New("downloaded file exceeds size limit")
)

// 邮件与申请错误
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = errors.New("invalid email address")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
	ErrMissingRequiredFields     = errors.New("missing required fields")
	ErrApplicationRecipientEmpty = errors.New("application recipient not configured")
	ErrCaptchaRequired           = errors.New("captcha required")
	ErrCaptchaInvalid            = errors.New("captcha invalid")
)
