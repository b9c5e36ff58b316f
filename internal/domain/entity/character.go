package entity

// Character 人物卡实体
// NovelID 不做外键约束，删除小说时不级联
type Character struct {
	ID          string `json:"id" gorm:"type:varchar(64);primaryKey"`
	NovelID     string `json:"novel_id" gorm:"type:varchar(64);index;not null"`
	Name        string `json:"name" gorm:"type:text;not null"`
	Role        string `json:"role" gorm:"type:text"`
	Description string `json:"description" gorm:"type:text"`
	Traits      string `json:"traits" gorm:"type:text"`
}

// TableName 指定表名
func (Character) TableName() string {
	return "characters"
}
