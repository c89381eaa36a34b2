package shared

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// CaptchaPayloadRequest 验证码请求载荷，兼容 JSON 与表单字段。
type CaptchaPayloadRequest struct {
	CaptchaID   string `json:"captcha_id" form:"captcha_id"`
	CaptchaCode string `json:"captcha_code" form:"captcha_code"`
}

// CaptchaFromForm 从 multipart 表单读取验证码字段。
func CaptchaFromForm(c *gin.Context) CaptchaPayloadRequest {
	return CaptchaPayloadRequest{
		CaptchaID:   strings.TrimSpace(c.PostForm("captcha_id")),
		CaptchaCode: strings.TrimSpace(c.PostForm("captcha_code")),
	}
}
