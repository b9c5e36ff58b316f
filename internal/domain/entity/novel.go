// Package entity 定义领域实体
package entity

import (
	"time"
)

// Novel 小说实体
// Description 同时作为生成章节时的人物卡上下文
type Novel struct {
	ID          string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	Title       string    `json:"title" gorm:"type:text;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Genre       string    `json:"genre" gorm:"type:text"`
	Outline     string    `json:"outline" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Novel) TableName() string {
	return "novels"
}

// NewNovel 创建新小说
func NewNovel(id, title string) *Novel {
	now := time.Now()
	return &Novel{
		ID:        id,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch 刷新更新时间
func (n *Novel) Touch() {
	n.UpdatedAt = time.Now()
}
