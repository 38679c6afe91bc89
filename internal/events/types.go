// Package events はタスクのアクティビティを非同期キュー経由で記録します。
package events

import "time"

// Type はアクティビティの種別を表します。
type Type string

const (
	TypeTaskCreated       Type = "task.created"
	TypeTaskUpdated       Type = "task.updated"
	TypeTaskStatusChanged Type = "task.status_changed"
	TypeTaskDeleted       Type = "task.deleted"
	TypeCommentCreated    Type = "comment.created"
	TypeCommentUpdated    Type = "comment.updated"
	TypeCommentDeleted    Type = "comment.deleted"
)

// Event はタスクに対して行われた操作1件です。
type Event struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	TaskID     int64          `json:"taskId"`
	ActorID    int64          `json:"actorId"`
	ActorEmail string         `json:"actorEmail"`
	Details    map[string]any `json:"details,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}
