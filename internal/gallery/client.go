package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ibheros/studio/internal/models"
)

const statusNotFound = 404

// APIError 服务端业务错误
type APIError struct {
	StatusCode int
	Msg        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Msg)
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

// APIClient 通过管理端接口访问视频记录与下载代理
type APIClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewAPIClient 创建接口客户端
func NewAPIClient(baseURL, token string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

// Token 当前登录令牌
func (c *APIClient) Token() string {
	return c.token
}

// Login 管理员登录并保存令牌
func (c *APIClient) Login(ctx context.Context, username, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.call(ctx, http.MethodPost, "/api/v1/admin/login", body, &out); err != nil {
		return err
	}
	if out.Token == "" {
		return errors.New("login returned empty token")
	}
	c.token = out.Token
	return nil
}

// ListPosts 获取视频列表
func (c *APIClient) ListPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := c.call(ctx, http.MethodGet, "/api/v1/admin/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost 获取视频详情，不存在时返回 nil, nil
func (c *APIClient) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := c.call(ctx, http.MethodGet, "/api/v1/admin/posts/"+url.PathEscape(id), nil, &post)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == statusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// SetUsed 写入使用状态
func (c *APIClient) SetUsed(ctx context.Context, id string, isUsed bool) (*models.Post, error) {
	var post models.Post
	body := map[string]bool{"isUsed": isUsed}
	if err := c.call(ctx, http.MethodPatch, "/api/v1/admin/posts/"+url.PathEscape(id)+"/used", body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Download 经下载代理取回文件
func (c *APIClient) Download(ctx context.Context, rawURL, filename string) (*File, error) {
	query := url.Values{}
	query.Set("url", rawURL)
	if filename != "" {
		query.Set("filename", filename)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/download?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if json.Unmarshal(data, &failure) == nil && failure.Error != "" {
			if failure.Details != "" {
				return nil, fmt.Errorf("%s: %s", failure.Error, failure.Details)
			}
			return nil, errors.New(failure.Error)
		}
		return nil, fmt.Errorf("download proxy returned %s", resp.Status)
	}

	name := filename
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" && name == "" {
		name = params["filename"]
	}
	return &File{Name: name, ContentType: resp.Header.Get("Content-Type"), Data: data}, nil
}

func (c *APIClient) call(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	if env.StatusCode != 0 {
		return &APIError{StatusCode: env.StatusCode, Msg: env.Msg}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
