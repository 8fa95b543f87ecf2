package project

import "time"

type Project struct {
	ID          string    `gorm:"primaryKey;size:26" json:"id"`
	WorkspaceID string    `gorm:"index;size:26;not null" json:"workspaceId"`
	Name        string    `gorm:"not null" json:"name"`
	Slug        string    `gorm:"not null" json:"slug"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	IsPublic    bool      `gorm:"not null;default:false" json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Project) TableName() string {
	return "projects"
}
