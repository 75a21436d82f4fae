package mirror

import (
	"time"

	"github.com/freedompraise/lockedin/internal/goals"
	"github.com/freedompraise/lockedin/internal/models"
	"github.com/google/uuid"
)

// DefaultGoalName is the goal the mirror owns in the profile.
const DefaultGoalName = "Daily"

// Reconcile folds the local list into the goal collection. In the goal named
// goalName the tasks marked TaskSourceMirror are replaced with the local
// entries, last write wins. Tasks of that goal that came from elsewhere, and
// all other goals, are copied unchanged. The goal is created when missing,
// keeping its id and creation time otherwise.
//
// Task ids are the local ids. A completed entry gets LastCompleted at the
// start of its completion day in loc.
func Reconcile(current []models.Goal, local []models.LocalTask, goalName string, loc *time.Location, now time.Time, newID func() uuid.UUID) []models.Goal {
	out, goal := goals.AddGoal(current, goalName, now, newID)

	tasks := make([]models.Task, 0, len(goal.Tasks)+len(local))
	for _, t := range goal.Tasks {
		if t.Source != models.TaskSourceMirror {
			tasks = append(tasks, t)
		}
	}
	for _, lt := range local {
		task := models.Task{
			ID:     lt.ID,
			GoalID: goal.ID,
			Text:   lt.Goal,
			Source: models.TaskSourceMirror,
		}
		if lt.IsCompleted {
			task.IsCompleted = true
			if day, err := time.ParseInLocation(models.DayLayout, lt.LastCompletedDate, loc); err == nil {
				task.LastCompleted = &day
			}
		}
		tasks = append(tasks, task)
	}

	idx := goals.FindGoalByName(out, goalName)
	out[idx].Tasks = tasks
	return out
}
