// Package goals holds the goal/task collection stored on a profile.
//
// The functions in this file are pure: they never modify their input and
// return a new collection. Repository loads a collection, applies one of
// them, and writes the result back.
package goals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/freedompraise/lockedin/internal/models"
	"github.com/google/uuid"
)

// PlaceholderTaskText replaces imported task entries that are not strings.
const PlaceholderTaskText = "New task"

// AIEntry is one goal of an imported batch.
type AIEntry struct {
	Goal  string
	Tasks []string
}

type rawAIEntry struct {
	Goal  json.RawMessage `json:"goal"`
	Tasks json.RawMessage `json:"tasks"`
}

// ParseAIEntries decodes a batch of {goal, tasks} entries. The top level must
// be an array and every goal name a non-empty string. A tasks value that is not
// an array counts as no tasks; array elements that are not strings become
// PlaceholderTaskText.
func ParseAIEntries(data []byte) ([]AIEntry, error) {
	var raw []rawAIEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid goals data format: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("invalid goals data format: expected an array")
	}

	entries := make([]AIEntry, 0, len(raw))
	for i, r := range raw {
		var name string
		if err := json.Unmarshal(r.Goal, &name); err != nil || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("entry %d: goal must be a non-empty string", i)
		}

		var items []json.RawMessage
		if err := json.Unmarshal(r.Tasks, &items); err != nil {
			items = nil
		}

		tasks := make([]string, 0, len(items))
		for _, item := range items {
			var text string
			if err := json.Unmarshal(item, &text); err != nil || bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
				text = PlaceholderTaskText
			}
			tasks = append(tasks, text)
		}

		entries = append(entries, AIEntry{Goal: name, Tasks: tasks})
	}
	return entries, nil
}

// Clone deep-copies a goal collection.
func Clone(goals []models.Goal) []models.Goal {
	out := make([]models.Goal, len(goals))
	for i, g := range goals {
		out[i] = g
		out[i].Tasks = make([]models.Task, len(g.Tasks))
		for j, t := range g.Tasks {
			out[i].Tasks[j] = t
			if t.LastCompleted != nil {
				ts := *t.LastCompleted
				out[i].Tasks[j].LastCompleted = &ts
			}
		}
	}
	return out
}

// FindGoalByName returns the index of the goal whose name equals name exactly.
func FindGoalByName(goals []models.Goal, name string) int {
	for i := range goals {
		if goals[i].Name == name {
			return i
		}
	}
	return -1
}

func findGoal(goals []models.Goal, goalID uuid.UUID) int {
	for i := range goals {
		if goals[i].ID == goalID {
			return i
		}
	}
	return -1
}

func findTask(tasks []models.Task, taskID uuid.UUID) int {
	for i := range tasks {
		if tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

func newTask(goalID uuid.UUID, text string, newID func() uuid.UUID) models.Task {
	return models.Task{
		ID:     newID(),
		GoalID: goalID,
		Text:   text,
	}
}

// NewGoal builds an empty goal.
func NewGoal(name string, now time.Time, newID func() uuid.UUID) models.Goal {
	return models.Goal{
		ID:        newID(),
		Name:      name,
		Tasks:     []models.Task{},
		CreatedAt: now.UTC(),
	}
}

// MergeAITasks appends each entry's tasks to the goal with the same name,
// creating the goal when none matches. Entries are applied in order, so a name
// repeated within one batch still maps to a single goal. Goals not named in
// the batch are kept.
func MergeAITasks(goals []models.Goal, entries []AIEntry, now time.Time, newID func() uuid.UUID) []models.Goal {
	out := Clone(goals)
	for _, entry := range entries {
		idx := FindGoalByName(out, entry.Goal)
		if idx < 0 {
			out = append(out, NewGoal(entry.Goal, now, newID))
			idx = len(out) - 1
		}
		for _, text := range entry.Tasks {
			out[idx].Tasks = append(out[idx].Tasks, newTask(out[idx].ID, text, newID))
		}
	}
	return out
}

// AddGoal appends an empty goal named name, or returns the existing one.
func AddGoal(goals []models.Goal, name string, now time.Time, newID func() uuid.UUID) ([]models.Goal, models.Goal) {
	out := Clone(goals)
	if idx := FindGoalByName(out, name); idx >= 0 {
		return out, out[idx]
	}
	g := NewGoal(name, now, newID)
	return append(out, g), g
}

// AppendTask adds one task to goalID. ok is false if the goal does not exist.
func AppendTask(goals []models.Goal, goalID uuid.UUID, text string, newID func() uuid.UUID) (out []models.Goal, task models.Task, ok bool) {
	out = Clone(goals)
	idx := findGoal(out, goalID)
	if idx < 0 {
		return out, models.Task{}, false
	}
	task = newTask(goalID, text, newID)
	out[idx].Tasks = append(out[idx].Tasks, task)
	return out, task, true
}

// RemoveTask filters taskID out of goalID. Missing goals or tasks are a no-op.
func RemoveTask(goals []models.Goal, goalID, taskID uuid.UUID) []models.Goal {
	out := Clone(goals)
	idx := findGoal(out, goalID)
	if idx < 0 {
		return out
	}
	kept := out[idx].Tasks[:0]
	for _, t := range out[idx].Tasks {
		if t.ID != taskID {
			kept = append(kept, t)
		}
	}
	out[idx].Tasks = kept
	return out
}

// ToggleTask flips completion. Completing stamps LastCompleted with now,
// un-completing clears it.
func ToggleTask(goals []models.Goal, goalID, taskID uuid.UUID, now time.Time) (out []models.Goal, task models.Task, ok bool) {
	out = Clone(goals)
	gi := findGoal(out, goalID)
	if gi < 0 {
		return out, models.Task{}, false
	}
	ti := findTask(out[gi].Tasks, taskID)
	if ti < 0 {
		return out, models.Task{}, false
	}

	t := &out[gi].Tasks[ti]
	if t.IsCompleted {
		t.IsCompleted = false
		t.LastCompleted = nil
	} else {
		ts := now.UTC()
		t.IsCompleted = true
		t.LastCompleted = &ts
	}
	return out, *t, true
}

// EditTask replaces a task's text.
func EditTask(goals []models.Goal, goalID, taskID uuid.UUID, text string) (out []models.Goal, task models.Task, ok bool) {
	out = Clone(goals)
	gi := findGoal(out, goalID)
	if gi < 0 {
		return out, models.Task{}, false
	}
	ti := findTask(out[gi].Tasks, taskID)
	if ti < 0 {
		return out, models.Task{}, false
	}
	out[gi].Tasks[ti].Text = text
	return out, out[gi].Tasks[ti], true
}
