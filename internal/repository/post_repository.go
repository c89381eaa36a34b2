package repository

import (
	"errors"
	"time"

	"github.com/ibheros/studio/internal/models"

	"gorm.io/gorm"
)

// ErrPostNotFound 更新目标不存在
var ErrPostNotFound = errors.New("post not found")

// postContentColumns 编辑保存时整体覆盖的列，id 与 created_at 永不改写
var postContentColumns = []string{
	"title",
	"content",
	"hashtags",
	"cover_image_url",
	"video_url",
	"manim_code",
	"reference_link",
	"updated_at",
}

// PostRepository 视频内容数据访问接口
type PostRepository interface {
	List() ([]models.Post, error)
	GetByID(id string) (*models.Post, error)
	Create(post *models.Post) error
	Update(post *models.Post) error
	UpdateUsage(id string, isUsed bool, usedAt *time.Time) error
}

// GormPostRepository GORM 实现
type GormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository 创建视频内容仓库
func NewPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// List 按创建时间倒序返回全部记录
func (r *GormPostRepository) List() ([]models.Post, error) {
	posts := make([]models.Post, 0)
	if err := r.db.Order("created_at DESC").Order("id DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// GetByID 根据 ID 获取记录，不存在时返回 nil
func (r *GormPostRepository) GetByID(id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create 新增记录
func (r *GormPostRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

// Update 覆盖内容字段
func (r *GormPostRepository) Update(post *models.Post) error {
	result := r.db.Model(&models.Post{}).
		Where("id = ?", post.ID).
		Select(postContentColumns).
		Updates(post)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// UpdateUsage 仅写入使用状态两列
func (r *GormPostRepository) UpdateUsage(id string, isUsed bool, usedAt *time.Time) error {
	result := r.db.Model(&models.Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_used": isUsed,
			"used_at": usedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}
