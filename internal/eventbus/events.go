package eventbus

type Name string

const (
	TaskCreated      Name = "task.created"
	TaskUpdated      Name = "task.updated"
	TaskDeleted      Name = "task.deleted"
	UserSignedUp     Name = "user.signed_up"
	WorkspaceCreated Name = "workspace.created"
)

// MetadataProjectID is the metadata key the event stream filters on.
const MetadataProjectID = "project_id"

type metadataCarrier interface {
	EventMetadata() map[string]string
}

const (
	ActivityTypeTask   = "task"
	ActivityTypeCreate = "create"
)

// TaskCreatedPayload mirrors the activity row the subscriber writes. UserID is
// the assignee or "" when unassigned. ActorID is the requester when known.
type TaskCreatedPayload struct {
	TaskID    string `json:"taskId"`
	ProjectID string `json:"projectId,omitempty"`
	UserID    string `json:"userId"`
	ActorID   string `json:"actorId,omitempty"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	Title     string `json:"title,omitempty"`
}

func (p TaskCreatedPayload) EventMetadata() map[string]string {
	return projectMetadata(p.ProjectID)
}

type TaskUpdatedPayload struct {
	TaskID    string `json:"taskId"`
	ProjectID string `json:"projectId"`
	Status    string `json:"status"`
	ActorID   string `json:"actorId,omitempty"`
}

func (p TaskUpdatedPayload) EventMetadata() map[string]string {
	return projectMetadata(p.ProjectID)
}

type TaskDeletedPayload struct {
	TaskID    string `json:"taskId"`
	ProjectID string `json:"projectId"`
}

func (p TaskDeletedPayload) EventMetadata() map[string]string {
	return projectMetadata(p.ProjectID)
}

type UserSignedUpPayload struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type WorkspaceCreatedPayload struct {
	WorkspaceID string `json:"workspaceId"`
	OwnerID     string `json:"ownerId"`
}

func projectMetadata(projectID string) map[string]string {
	if projectID == "" {
		return nil
	}
	return map[string]string{MetadataProjectID: projectID}
}
