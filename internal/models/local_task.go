package models

import "github.com/google/uuid"

// DayLayout formats the calendar-day strings stored in LocalTask.LastCompletedDate.
const DayLayout = "Mon Jan 02 2006"

// LocalTask is an entry of the local-first daily list. Goal is free text.
type LocalTask struct {
	ID                uuid.UUID `json:"id"`
	Goal              string    `json:"goal"`
	IsCompleted       bool      `json:"isCompleted"`
	LastCompletedDate string    `json:"lastCompletedDate"`
}

type LocalTaskRequest struct {
	Goal string `json:"goal" validate:"required"`
}
