package models

import (
	"errors"
	"strings"

	"github.com/ibheros/studio/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// ErrDefaultAdminPasswordMissing 未配置默认管理员密码
var ErrDefaultAdminPasswordMissing = errors.New("default admin password is empty")

// InitDefaultAdmin 初始化默认管理员账号，已存在管理员时跳过
func InitDefaultAdmin(username, password string) error {
	var count int64
	if err := DB.Model(&Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = "admin"
	}
	if password == "" {
		return ErrDefaultAdminPasswordMissing
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := DB.Create(&Admin{Username: username, PasswordHash: string(hash)}).Error; err != nil {
		return err
	}
	logger.Warnw("default_admin_created", "username", username, "password_hidden", true)
	return nil
}
