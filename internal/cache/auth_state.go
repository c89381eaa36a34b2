package cache

import (
	"context"
	"strconv"
	"time"
)

const tokenVersionTTL = 10 * time.Minute

type tokenVersionEntry struct {
	Version  uint64 `json:"v"`
	CachedAt int64  `json:"at"`
}

func tokenVersionKey(adminID uint) string {
	return "auth:admin:" + strconv.FormatUint(uint64(adminID), 10) + ":token_version"
}

// GetAdminTokenVersion 读取缓存的管理员 Token 版本
func GetAdminTokenVersion(ctx context.Context, adminID uint) (uint64, bool, error) {
	if adminID == 0 {
		return 0, false, nil
	}
	var entry tokenVersionEntry
	hit, err := GetJSON(ctx, tokenVersionKey(adminID), &entry)
	if err != nil || !hit {
		return 0, false, err
	}
	return entry.Version, true, nil
}

// SetAdminTokenVersion 缓存管理员当前 Token 版本，登录与鉴权回源时写入
func SetAdminTokenVersion(ctx context.Context, adminID uint, version uint64) error {
	if adminID == 0 {
		return nil
	}
	return SetJSON(ctx, tokenVersionKey(adminID), tokenVersionEntry{Version: version, CachedAt: time.Now().Unix()}, tokenVersionTTL)
}
