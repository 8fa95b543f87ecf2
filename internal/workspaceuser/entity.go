package workspaceuser

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusActive:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown membership status %q", s)
}

type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// WorkspaceUser is a membership. UserID stays empty until the invited email
// belongs to a registered user.
type WorkspaceUser struct {
	ID          string     `gorm:"primaryKey;size:26" json:"id"`
	WorkspaceID string     `gorm:"size:26;not null;uniqueIndex:idx_workspace_user_email" json:"workspaceId"`
	UserID      string     `gorm:"size:26;index" json:"userId"`
	UserEmail   string     `gorm:"not null;uniqueIndex:idx_workspace_user_email" json:"userEmail"`
	Role        Role       `gorm:"not null;default:member" json:"role"`
	Status      Status     `gorm:"not null;default:pending" json:"status"`
	JoinedAt    *time.Time `json:"joinedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (WorkspaceUser) TableName() string {
	return "workspace_users"
}

// Member is a membership joined with the linked user's name.
type Member struct {
	WorkspaceUser
	UserName string `json:"userName"`
}
