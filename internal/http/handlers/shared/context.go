package shared

import (
	"github.com/ibheros/studio/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetAdminID 从上下文读取登录管理员 ID，缺失时直接返回 401。
func GetAdminID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("admin_id")
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	id, ok := value.(uint)
	if !ok || id == 0 {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	return id, true
}
