// Package i18n 站点中英文文案与语言解析
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/ibheros/studio/internal/constants"

	"github.com/gin-gonic/gin"
)

const (
	LocaleZH = constants.LocaleZH
	LocaleEN = constants.LocaleEN

	// FallbackLocale 缺失文案时回退的语言
	FallbackLocale = LocaleEN
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	loadOnce     sync.Once
	dictionaries map[string]map[string]string
)

func load() {
	dictionaries = make(map[string]map[string]string)
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		panic(fmt.Errorf("read embedded locales: %w", err))
	}
	for _, entry := range entries {
		raw, err := localeFS.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			panic(fmt.Errorf("read locale %s: %w", entry.Name(), err))
		}
		dict := make(map[string]string)
		if err := json.Unmarshal(raw, &dict); err != nil {
			panic(fmt.Errorf("parse locale %s: %w", entry.Name(), err))
		}
		dictionaries[strings.TrimSuffix(entry.Name(), ".json")] = dict
	}
}

// IsSupported 判断语言是否受支持
func IsSupported(locale string) bool {
	for _, item := range constants.SupportedLocales {
		if item == locale {
			return true
		}
	}
	return false
}

// Normalize 归一化语言标识，未知语言返回空串
func Normalize(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return ""
	}
	if idx := strings.IndexAny(value, "-_"); idx > 0 {
		value = value[:idx]
	}
	if IsSupported(value) {
		return value
	}
	return ""
}

// ResolveLocale 依次读取路径参数、查询参数与 X-Locale 头，缺省为中文
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return LocaleZH
	}
	candidates := []string{c.Param("lang"), c.Query("lang"), c.GetHeader("X-Locale")}
	for _, candidate := range candidates {
		if locale := Normalize(candidate); locale != "" {
			return locale
		}
	}
	return LocaleZH
}

// T 查询文案，缺失时回退英文，再缺失返回 key
func T(locale, key string) string {
	loadOnce.Do(load)
	if dict, ok := dictionaries[Normalize(locale)]; ok {
		if msg, ok := dict[key]; ok {
			return msg
		}
	}
	if msg, ok := dictionaries[FallbackLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 查询文案并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
