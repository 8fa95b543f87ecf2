package notification

import "time"

const (
	TypeTaskAssigned = "task_assigned"
	ResourceTask     = "task"
)

type Notification struct {
	ID           string    `gorm:"primaryKey;size:26" json:"id"`
	UserID       string    `gorm:"index;size:26;not null" json:"userId"`
	Type         string    `gorm:"not null" json:"type"`
	Title        string    `gorm:"not null" json:"title"`
	Content      string    `json:"content"`
	ResourceID   string    `json:"resourceId"`
	ResourceType string    `json:"resourceType"`
	IsRead       bool      `gorm:"not null;default:false" json:"isRead"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}
