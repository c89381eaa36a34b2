package service

import (
	"strings"

	"github.com/ibheros/studio/internal/constants"
)

const upperHex = "0123456789ABCDEF"

// ContentDisposition 构造附件头：ASCII 兜底文件名加 RFC 5987 编码的原始文件名
func ContentDisposition(filename string) string {
	return `attachment; filename="file_download.` + FallbackExtension(filename) + `"; filename*=UTF-8''` + EncodeRFC5987(filename)
}

// FallbackExtension 取最后一个点之后的 ASCII 字母数字扩展名，否则为 dat
func FallbackExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return constants.FallbackExtension
	}
	ext := filename[idx+1:]
	for i := 0; i < len(ext); i++ {
		c := ext[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return constants.FallbackExtension
		}
	}
	return ext
}

// EncodeRFC5987 对 UTF-8 字节做百分号编码，仅保留 A-Za-z0-9 与 -_.!~
func EncodeRFC5987(value string) string {
	var b strings.Builder
	b.Grow(len(value) * 3)
	for i := 0; i < len(value); i++ {
		c := value[i]
		if isRFC5987Unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0F])
	}
	return b.String()
}

func isRFC5987Unreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '!', c == '~':
		return true
	}
	return false
}
