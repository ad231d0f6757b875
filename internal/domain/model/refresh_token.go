package model

import "time"

type RefreshToken struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	UserID    int64  `gorm:"not null;index"`
	TokenHash string `gorm:"type:varchar(64);uniqueIndex;not null"`
	UserAgent string `gorm:"type:varchar(512)"`
	ExpiresAt time.Time
	UsedAt    *time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
