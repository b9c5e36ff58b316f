package entity

// ChapterStatus 章节状态，自由文本
type ChapterStatus = string

const (
	ChapterStatusDraft     ChapterStatus = "draft"
	ChapterStatusCompleted ChapterStatus = "completed"
)

// Chapter 章节实体
// Order 在同一小说内应连续，但不做唯一约束
type Chapter struct {
	ID      string        `json:"id" gorm:"type:varchar(64);primaryKey"`
	NovelID string        `json:"novel_id" gorm:"type:varchar(64);index;not null"`
	Title   string        `json:"title" gorm:"type:text"`
	Content string        `json:"content" gorm:"type:text"`
	Order   int           `json:"order" gorm:"column:order;not null;default:0"`
	Status  ChapterStatus `json:"status" gorm:"type:text;default:'draft'"`
}

// TableName 指定表名
func (Chapter) TableName() string {
	return "chapters"
}

// NewGeneratedChapter 创建生成完成的章节，追加在已有章节之后
func NewGeneratedChapter(id, novelID, title, content string, existing int) *Chapter {
	return &Chapter{
		ID:      id,
		NovelID: novelID,
		Title:   title,
		Content: content,
		Order:   existing + 1,
		Status:  ChapterStatusCompleted,
	}
}
