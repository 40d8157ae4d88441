package infrastructure

import "time"

// ActivityModel 对应数据库中的 activities 表
type ActivityModel struct {
	ID            uint   `gorm:"primaryKey"`
	ActivityKey   string `gorm:"size:50;not null;uniqueIndex"`
	DisplayName   string `gorm:"size:100;not null;uniqueIndex"`
	Description   string `gorm:"type:text"`
	Timing        string `gorm:"size:100"`
	UnitPrice     int    `gorm:"not null"`
	Capacity      int    `gorm:"not null"`
	ReservedCount int    `gorm:"not null"`
	// 布尔列不设 default 标签，否则 gorm 会把 false 当作零值替换成默认值
	IsActive  bool  `gorm:"not null"`
	IsSoldOut bool  `gorm:"not null"`
	Version   int64 `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定 GORM 应该使用的表名
func (ActivityModel) TableName() string {
	return "activities"
}
