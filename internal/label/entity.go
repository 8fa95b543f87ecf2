package label

import "time"

type Label struct {
	ID          string    `gorm:"primaryKey;size:26" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Color       string    `gorm:"not null" json:"color"`
	TaskID      string    `gorm:"index;size:26" json:"taskId"`
	WorkspaceID string    `gorm:"index;size:26" json:"workspaceId"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Label) TableName() string {
	return "labels"
}
