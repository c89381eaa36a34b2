package gallery

import (
	"fmt"
	"strings"
	"time"

	"github.com/ibheros/studio/internal/constants"
)

// ParseHashtags 按空白切分，缺少 # 的补齐
func ParseHashtags(raw string) []string {
	fields := strings.Fields(raw)
	tags := make([]string, 0, len(fields))
	for _, field := range fields {
		if !strings.HasPrefix(field, "#") {
			field = "#" + field
		}
		if field == "#" {
			continue
		}
		tags = append(tags, field)
	}
	return tags
}

// SummaryHashtags 列表视图只展示前两个标签
func SummaryHashtags(raw string) string {
	tags := ParseHashtags(raw)
	if len(tags) <= 2 {
		return strings.Join(tags, " ")
	}
	return strings.Join(tags[:2], " ") + " ..."
}

// FormatDate 按语言格式化日期
func FormatDate(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	if lang == constants.LocaleZH {
		return fmt.Sprintf("%d年%d月%d日", t.Year(), int(t.Month()), t.Day())
	}
	return t.Format("Jan 2, 2006")
}
