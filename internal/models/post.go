package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post 视频内容记录
type Post struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`                    // 主键（UUID）
	Title         string     `gorm:"not null" json:"title"`                           // 标题
	Content       string     `gorm:"type:text" json:"content"`                        // 描述
	Hashtags      string     `gorm:"type:text" json:"hashtags"`                       // 空格分隔的话题标签
	CoverImageURL string     `gorm:"column:cover_image_url" json:"coverImageUrl"`     // 封面图地址
	VideoURL      string     `gorm:"column:video_url" json:"videoUrl"`                // 视频地址
	ManimCode     string     `gorm:"type:text" json:"manimCode"`                      // Manim 源码
	ReferenceLink string     `json:"referenceLink"`                                   // 参考链接
	IsUsed        bool       `gorm:"not null;default:false;index" json:"isUsed"`      // 是否已使用
	UsedAt        *time.Time `json:"usedAt"`                                          // 标记使用时间
	CreatedAt     time.Time  `gorm:"index;autoCreateTime:false" json:"createdAt"`     // 创建时间
	UpdatedAt     *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt,omitempty"` // 最近编辑时间
}

// TableName 指定表名
func (Post) TableName() string {
	return "posts"
}

// BeforeCreate 分配主键
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(p.ID) == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
