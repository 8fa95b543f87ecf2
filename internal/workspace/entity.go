package workspace

import "time"

type Workspace struct {
	ID          string    `gorm:"primaryKey;size:26" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `gorm:"index;size:26;not null" json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Workspace) TableName() string {
	return "workspaces"
}
