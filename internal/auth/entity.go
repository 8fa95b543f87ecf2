package auth

import "time"

type Session struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"`
	UserID    string    `gorm:"index;size:26;not null" json:"userId"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Session) TableName() string {
	return "sessions"
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
