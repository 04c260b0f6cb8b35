package model

import "time"

type Post struct {
	ID       uint64  `gorm:"primaryKey"`
	Text     string  `gorm:"type:text;not null"`
	AuthorID uint64  `gorm:"not null;index:idx_author_time"`
	Author   User    `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	GroupID  *uint64 `gorm:"index:idx_group_time"`
	Group    *Group  `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL"`
	Image    string  `gorm:"size:255"`
	// CreatedAt 发布时间，创建后不再更新
	CreatedAt time.Time `gorm:"index:idx_author_time;index:idx_group_time"`
}

func (Post) TableName() string { return "posts" }
