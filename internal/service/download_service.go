package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ibheros/studio/internal/config"
	"github.com/ibheros/studio/internal/constants"
	"github.com/ibheros/studio/internal/logger"
)

// UpstreamStatusError 上游返回非 2xx
type UpstreamStatusError struct {
	StatusCode int
	StatusText string
}

func (e *UpstreamStatusError) Error() string {
	return "Failed to fetch file: " + e.StatusText
}

// DownloadResult 代理取回的文件
type DownloadResult struct {
	Data        []byte
	ContentType string
}

const maxDownloadRedirects = 10

// DownloadService 同源下载代理，服务端取回远端文件以附件形式返回
type DownloadService struct {
	client       *http.Client
	maxBytes     int64
	allowedHosts map[string]struct{}
	// trustedHosts 可解析到内网地址的主机（站点与媒体域名、白名单）
	trustedHosts map[string]struct{}
	allowPrivate bool
	dialer       *net.Dialer
	resolver     *net.Resolver
}

// NewDownloadService 创建下载代理服务，trustedHosts 为站点自身的媒体主机
func NewDownloadService(cfg config.DownloadConfig, trustedHosts ...string) *DownloadService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	s := &DownloadService{
		maxBytes:     cfg.MaxBytes,
		allowedHosts: hostSet(cfg.AllowedHosts),
		trustedHosts: hostSet(append(append([]string{}, cfg.AllowedHosts...), trustedHosts...)),
		allowPrivate: cfg.AllowPrivate,
		dialer:       &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second},
		resolver:     net.DefaultResolver,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = s.dialContext
	s.client = &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxDownloadRedirects {
				return fmt.Errorf("stopped after %d redirects", maxDownloadRedirects)
			}
			_, err := s.validateURL(req.URL.String())
			return err
		},
	}
	return s
}

func hostSet(hosts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(hosts))
	for _, host := range hosts {
		if h := strings.ToLower(strings.TrimSpace(host)); h != "" {
			set[h] = struct{}{}
		}
	}
	return set
}

// HostOf 取地址中的主机名，相对地址或解析失败返回空
func HostOf(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

// WithHTTPClient 替换出站客户端
func (s *DownloadService) WithHTTPClient(client *http.Client) *DownloadService {
	if client != nil {
		s.client = client
	}
	return s
}

// Fetch 取回远端文件全部字节
func (s *DownloadService) Fetch(ctx context.Context, rawURL string) (*DownloadResult, error) {
	target, err := s.validateURL(rawURL)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.FromContext(ctx).Warnw("download_upstream_status", "host", target.Host, "status", resp.StatusCode)
		return nil, &UpstreamStatusError{StatusCode: resp.StatusCode, StatusText: statusText(resp)}
	}

	reader := io.Reader(resp.Body)
	if s.maxBytes > 0 {
		if resp.ContentLength > s.maxBytes {
			return nil, ErrDownloadTooLarge
		}
		reader = io.LimitReader(resp.Body, s.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, ErrDownloadTooLarge
	}

	contentType := strings.TrimSpace(resp.Header.Get("Content-Type"))
	if contentType == "" {
		contentType = constants.DefaultMediaType
	}
	return &DownloadResult{Data: data, ContentType: contentType}, nil
}

func (s *DownloadService) validateURL(rawURL string) (*url.URL, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, ErrDownloadURLMissing
	}
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadURLInvalid, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", ErrDownloadURLInvalid, parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: empty host", ErrDownloadURLInvalid)
	}
	if len(s.allowedHosts) > 0 {
		host := strings.ToLower(parsed.Hostname())
		if _, ok := s.allowedHosts[host]; !ok {
			return nil, fmt.Errorf("%w: host %s", ErrDownloadURLInvalid, host)
		}
	}
	if ip := net.ParseIP(parsed.Hostname()); ip != nil && isInternalIP(ip) && !s.mayReachInternal(parsed.Hostname()) {
		return nil, fmt.Errorf("%w: address %s", ErrDownloadURLInvalid, ip)
	}
	return parsed, nil
}

func (s *DownloadService) mayReachInternal(host string) bool {
	if s.allowPrivate {
		return true
	}
	_, ok := s.trustedHosts[strings.ToLower(host)]
	return ok
}

// dialContext 在连接前校验解析结果，域名指向内网地址时拒绝
func (s *DownloadService) dialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	if s.mayReachInternal(host) {
		return s.dialer.DialContext(ctx, network, addr)
	}
	ips, err := s.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for _, ip := range ips {
		if isInternalIP(ip.IP) {
			lastErr = fmt.Errorf("%w: address %s", ErrDownloadURLInvalid, ip.IP)
			continue
		}
		conn, err := s.dialer.DialContext(ctx, network, net.JoinHostPort(ip.IP.String(), port))
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no address for " + host)
	}
	return nil, lastErr
}

func isInternalIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsInterfaceLocalMulticast()
}

// statusText 取状态行中的原因短语，缺失时使用标准文本
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
