package public

import (
	"github.com/ibheros/studio/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetImageCaptcha 生成图片验证码
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondError(c, response.CodeInternal, "error.captcha_generate_failed", err)
		return
	}
	response.Success(c, challenge)
}
