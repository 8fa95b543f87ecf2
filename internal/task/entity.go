package task

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusBacklog         Status = "backlog"
	StatusToDo            Status = "to-do"
	StatusInProgress      Status = "in-progress"
	StatusTechnicalReview Status = "technical-review"
	StatusPaused          Status = "paused"
	StatusCompleted       Status = "completed"
)

// statusArchived is the name some clients use for the paused column.
const statusArchived = "archived"

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusBacklog, StatusToDo, StatusInProgress, StatusTechnicalReview, StatusPaused, StatusCompleted:
		return st, nil
	}
	if s == statusArchived {
		return StatusPaused, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

type Priority string

const (
	PriorityLow        Priority = "low"
	PriorityMedium     Priority = "medium"
	PriorityHigh       Priority = "high"
	PriorityUrgent     Priority = "urgent"
	PriorityNoPriority Priority = "no-priority"
)

// ParsePriority defaults an empty value to low.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityLow, nil
	}
	switch p := Priority(s); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent, PriorityNoPriority:
		return p, nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

type Task struct {
	ID          string     `gorm:"primaryKey;size:26" json:"id"`
	ProjectID   string     `gorm:"size:26;not null;uniqueIndex:idx_task_project_number" json:"projectId"`
	Number      int        `gorm:"not null;uniqueIndex:idx_task_project_number" json:"number"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Status      Status     `gorm:"not null" json:"status"`
	Priority    Priority   `gorm:"not null;default:low" json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	UserID      string     `gorm:"size:26;index" json:"userId"`
	Position    float64    `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (Task) TableName() string {
	return "tasks"
}

// TaskWithAssignee is a task joined with its assignee's user row.
type TaskWithAssignee struct {
	Task
	AssigneeName *string `json:"assigneeName"`
	AssigneeID   *string `json:"assigneeId"`
}
