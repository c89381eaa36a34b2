package public

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/ibheros/studio/internal/gallery"
	"github.com/ibheros/studio/internal/i18n"
	"github.com/ibheros/studio/internal/models"
	"github.com/ibheros/studio/internal/service"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type videoPageLabels struct {
	TitleSuffix      string
	Description      string
	ShareLink        string
	Hashtags         string
	VideoUnsupported string
}

type videoPageData struct {
	Lang      string
	Post      *models.Post
	Published string
	Hashtags  []string
	ShareLink string
	Labels    videoPageLabels
}

type notFoundPageData struct {
	Lang    string
	Message string
}

// VideoPage 渲染分享链接指向的视频详情页
func (h *Handler) VideoPage(c *gin.Context) {
	lang := i18n.ResolveLocale(c)
	post, err := h.PostService.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, service.ErrNotFound) {
		renderPage(c, http.StatusNotFound, "not_found.html", notFoundPageData{
			Lang:    lang,
			Message: i18n.T(lang, "page.video_not_found"),
		})
		return
	}
	if err != nil {
		logRequest(c).Errorw("video_page_load_failed", "post_id", c.Param("id"), "error", err)
		renderPage(c, http.StatusInternalServerError, "not_found.html", notFoundPageData{
			Lang:    lang,
			Message: i18n.T(lang, "error.server_error"),
		})
		return
	}

	renderPage(c, http.StatusOK, "video.html", videoPageData{
		Lang:      lang,
		Post:      post,
		Published: i18n.Sprintf(lang, "page.published_on", gallery.FormatDate(post.CreatedAt, lang)),
		Hashtags:  gallery.ParseHashtags(post.Hashtags),
		ShareLink: gallery.ShareLink(h.publicOrigin(c), lang, post.ID),
		Labels: videoPageLabels{
			TitleSuffix:      i18n.T(lang, "page.video_title_suffix"),
			Description:      i18n.T(lang, "page.description"),
			ShareLink:        i18n.T(lang, "page.share_link"),
			Hashtags:         i18n.T(lang, "page.hashtags"),
			VideoUnsupported: i18n.T(lang, "page.video_unsupported"),
		},
	})
}

// publicOrigin 优先使用配置的站点地址，否则按请求推断
func (h *Handler) publicOrigin(c *gin.Context) string {
	if h.Config != nil {
		if base := strings.TrimSpace(h.Config.Site.PublicBaseURL); base != "" {
			return strings.TrimRight(base, "/")
		}
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + c.Request.Host
}

func renderPage(c *gin.Context, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		logRequest(c).Errorw("page_render_failed", "template", name, "error", err)
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
