package models

import (
	"time"

	"github.com/google/uuid"
)

// Goal lives inside Profile.Goals; it has no table of its own.
type Goal struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Tasks     []Task    `json:"tasks"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskSourceMirror marks tasks written by the daily sync of the local list.
const TaskSourceMirror = "mirror"

// Task belongs to exactly one goal. GoalID is a back-reference only.
type Task struct {
	ID            uuid.UUID  `json:"id"`
	GoalID        uuid.UUID  `json:"goalId"`
	Text          string     `json:"text"`
	IsCompleted   bool       `json:"isCompleted"`
	LastCompleted *time.Time `json:"lastCompleted"`
	Source        string     `json:"source,omitempty"`
}

// CompletedOn reports whether the task is completed and its completion falls
// on the same calendar day as now in loc.
func (t Task) CompletedOn(now time.Time, loc *time.Location) bool {
	if !t.IsCompleted || t.LastCompleted == nil {
		return false
	}
	y1, m1, d1 := t.LastCompleted.In(loc).Date()
	y2, m2, d2 := now.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Goal DTOs
type CreateGoalRequest struct {
	Name string `json:"name" validate:"required"`
}

type TaskTextRequest struct {
	Text string `json:"text" validate:"required"`
}
