package public

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ibheros/studio/internal/constants"
	"github.com/ibheros/studio/internal/service"

	"github.com/gin-gonic/gin"
)

// DownloadProxy 同源下载代理，使用真实 HTTP 状态码
func (h *Handler) DownloadProxy(c *gin.Context) {
	rawURL := strings.TrimSpace(c.Query("url"))
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url parameter"})
		return
	}
	filename := c.Query("filename")
	if strings.TrimSpace(filename) == "" {
		filename = constants.DefaultFilename
	}

	result, err := h.DownloadService.Fetch(c.Request.Context(), rawURL)
	if err != nil {
		logRequest(c).Warnw("download_proxy_failed", "url", rawURL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to download file",
			"details": err.Error(),
		})
		return
	}

	c.Header("Content-Disposition", service.ContentDisposition(filename))
	c.Header("Content-Length", strconv.Itoa(len(result.Data)))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
