package model

import "time"

type Follow struct {
	ID         uint64 `gorm:"primaryKey"`
	FollowerID uint64 `gorm:"not null;index:idx_follower;uniqueIndex:uk_follower_author"`
	Follower   User   `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	AuthorID   uint64 `gorm:"not null;index:idx_author;uniqueIndex:uk_follower_author"`
	Author     User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
}

// TableName sets table name for Follow
func (Follow) TableName() string { return "follow" }

// FollowOutbox 关注事件投递表
type FollowOutbox struct {
	ID        uint64 `gorm:"primaryKey"`
	EventType string `gorm:"size:16;not null"` // follow / unfollow
	Follower  uint64 `gorm:"not null"`
	Author    uint64 `gorm:"not null"`
	Payload   string `gorm:"type:json;not null"`
	Status    int8   `gorm:"not null;default:0;comment:'0=pending,1=sent,2=failed'"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (FollowOutbox) TableName() string { return "follow_outbox" }
