package shared

import (
	"github.com/ibheros/studio/internal/http/response"
	"github.com/ibheros/studio/internal/i18n"
	"github.com/ibheros/studio/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 当前请求的日志实例
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil || c.Request == nil {
		return logger.S()
	}
	return logger.FromContext(c.Request.Context())
}

// RespondError 按语言翻译 key 写出错误响应，cause 非空时记录日志
func RespondError(c *gin.Context, code int, key string, cause error) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	appErr := response.WrapError(code, msg, cause)
	if cause != nil {
		logHandlerError(RequestLog(c), appErr, cause)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondErrorWithDetails 同 RespondError，cause 文本放入 data.details
func RespondErrorWithDetails(c *gin.Context, code int, key string, cause error) {
	if cause == nil {
		RespondError(c, code, key, nil)
		return
	}
	msg := i18n.T(i18n.ResolveLocale(c), key)
	appErr := response.WrapError(code, msg, cause)
	logHandlerError(RequestLog(c), appErr, cause)
	response.ErrorWithData(c, appErr.Code, appErr.Message, gin.H{"details": cause.Error()})
}

func logHandlerError(log *zap.SugaredLogger, appErr *response.AppError, cause error) {
	fields := []interface{}{"code", appErr.Code, "key_message", appErr.Message, "error", cause}
	if appErr.Code < response.CodeInternal {
		log.Warnw("handler_error", fields...)
		return
	}
	log.Errorw("handler_error", fields...)
}
