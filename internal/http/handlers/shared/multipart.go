package shared

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/ibheros/studio/internal/constants"
	"github.com/ibheros/studio/internal/service"

	"github.com/gin-gonic/gin"
)

// ErrFileTooLarge 上传文件超过限制。
var ErrFileTooLarge = errors.New("uploaded file too large")

// ReadStagedFile 读取单个表单文件，字段不存在时返回 nil, nil。
func ReadStagedFile(c *gin.Context, field string, maxBytes int64) (*service.StagedFile, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return readFileHeader(header, maxBytes)
}

// ReadStagedFiles 读取同名的多个表单文件。
func ReadStagedFiles(c *gin.Context, field string, maxBytes int64) ([]*service.StagedFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	headers := form.File[field]
	files := make([]*service.StagedFile, 0, len(headers))
	for _, header := range headers {
		file, err := readFileHeader(header, maxBytes)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func readFileHeader(header *multipart.FileHeader, maxBytes int64) (*service.StagedFile, error) {
	if maxBytes > 0 && header.Size > maxBytes {
		return nil, fmt.Errorf("%w: %s", ErrFileTooLarge, header.Filename)
	}
	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	reader := io.Reader(src)
	if maxBytes > 0 {
		reader = io.LimitReader(src, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %s", ErrFileTooLarge, header.Filename)
	}
	contentType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if contentType == "" {
		contentType = constants.DefaultMediaType
	}
	return &service.StagedFile{Name: header.Filename, ContentType: contentType, Data: data}, nil
}
