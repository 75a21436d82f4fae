package goals

import (
	"testing"
	"time"

	"github.com/freedompraise/lockedin/internal/models"
	"github.com/google/uuid"
)

// sequentialIDs returns an id generator producing predictable uuids.
func sequentialIDs() func() uuid.UUID {
	n := 0
	return func() uuid.UUID {
		n++
		var id uuid.UUID
		id[15] = byte(n)
		id[14] = byte(n >> 8)
		return id
	}
}

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func TestParseAIEntries(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		want       []AIEntry
		shouldFail bool
	}{
		{
			name:  "strings",
			input: `[{"goal":"Fitness","tasks":["Run 5k","Stretch"]}]`,
			want:  []AIEntry{{Goal: "Fitness", Tasks: []string{"Run 5k", "Stretch"}}},
		},
		{
			name:  "non-string tasks become placeholder",
			input: `[{"goal":"Reading","tasks":["Read 10 pages", 42, {"x":1}, null]}]`,
			want: []AIEntry{{Goal: "Reading", Tasks: []string{
				"Read 10 pages", PlaceholderTaskText, PlaceholderTaskText, PlaceholderTaskText,
			}}},
		},
		{
			name:  "tasks not an array",
			input: `[{"goal":"Sleep","tasks":"8 hours"}]`,
			want:  []AIEntry{{Goal: "Sleep", Tasks: []string{}}},
		},
		{
			name:  "tasks missing",
			input: `[{"goal":"Sleep"}]`,
			want:  []AIEntry{{Goal: "Sleep", Tasks: []string{}}},
		},
		{
			name:  "empty batch",
			input: `[]`,
			want:  []AIEntry{},
		},
		{name: "object top level", input: `{"goal":"Fitness","tasks":[]}`, shouldFail: true},
		{name: "null top level", input: `null`, shouldFail: true},
		{name: "goal not a string", input: `[{"goal":7,"tasks":[]}]`, shouldFail: true},
		{name: "blank goal", input: `[{"goal":"  ","tasks":[]}]`, shouldFail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAIEntries([]byte(tt.input))
			if tt.shouldFail {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Goal != tt.want[i].Goal {
					t.Errorf("entry %d goal = %q, want %q", i, got[i].Goal, tt.want[i].Goal)
				}
				if len(got[i].Tasks) != len(tt.want[i].Tasks) {
					t.Fatalf("entry %d tasks = %v, want %v", i, got[i].Tasks, tt.want[i].Tasks)
				}
				for j := range got[i].Tasks {
					if got[i].Tasks[j] != tt.want[i].Tasks[j] {
						t.Errorf("entry %d task %d = %q, want %q", i, j, got[i].Tasks[j], tt.want[i].Tasks[j])
					}
				}
			}
		})
	}
}

func TestMergeAITasksCreatesGoal(t *testing.T) {
	got := MergeAITasks(nil, []AIEntry{{Goal: "Fitness", Tasks: []string{"Run 5k", "Stretch"}}}, fixedNow, sequentialIDs())

	if len(got) != 1 {
		t.Fatalf("expected 1 goal, got %d", len(got))
	}
	g := got[0]
	if g.Name != "Fitness" || !g.CreatedAt.Equal(fixedNow) {
		t.Errorf("goal = %+v", g)
	}
	if len(g.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(g.Tasks))
	}
	for i, want := range []string{"Run 5k", "Stretch"} {
		task := g.Tasks[i]
		if task.Text != want {
			t.Errorf("task %d text = %q, want %q", i, task.Text, want)
		}
		if task.IsCompleted || task.LastCompleted != nil {
			t.Errorf("task %d should start incomplete: %+v", i, task)
		}
		if task.GoalID != g.ID {
			t.Errorf("task %d goalId = %s, want %s", i, task.GoalID, g.ID)
		}
	}
}

func TestMergeAITasksAppendsToExistingGoal(t *testing.T) {
	ids := sequentialIDs()
	first := MergeAITasks(nil, []AIEntry{{Goal: "Fitness", Tasks: []string{"Run 5k"}}}, fixedNow, ids)
	second := MergeAITasks(first, []AIEntry{
		{Goal: "Fitness", Tasks: []string{"Stretch"}},
		{Goal: "fitness", Tasks: []string{"Swim"}},
	}, fixedNow.Add(time.Hour), ids)

	if len(second) != 2 {
		t.Fatalf("expected 2 goals (name match is case-sensitive), got %d", len(second))
	}
	if second[0].ID != first[0].ID || !second[0].CreatedAt.Equal(first[0].CreatedAt) {
		t.Error("existing goal identity changed")
	}
	if len(second[0].Tasks) != 2 {
		t.Errorf("expected appended task, got %d tasks", len(second[0].Tasks))
	}
	if len(first[0].Tasks) != 1 {
		t.Error("input collection was modified")
	}
}

func TestMergeAITasksRepeatedNameInBatch(t *testing.T) {
	got := MergeAITasks(nil, []AIEntry{
		{Goal: "Career", Tasks: []string{"Update CV"}},
		{Goal: "Career", Tasks: []string{"Apply"}},
	}, fixedNow, sequentialIDs())

	if len(got) != 1 || len(got[0].Tasks) != 2 {
		t.Fatalf("expected one goal with two tasks, got %+v", got)
	}
}

func TestMergeAITasksKeepsUnmentionedGoals(t *testing.T) {
	ids := sequentialIDs()
	goals := MergeAITasks(nil, []AIEntry{{Goal: "Health", Tasks: []string{"Walk"}}}, fixedNow, ids)
	got := MergeAITasks(goals, []AIEntry{{Goal: "Money", Tasks: []string{"Budget"}}}, fixedNow, ids)

	if len(got) != 2 || got[0].Name != "Health" || got[1].Name != "Money" {
		t.Fatalf("unexpected goals: %+v", got)
	}
}

func TestToggleTaskIsItsOwnInverse(t *testing.T) {
	goals := MergeAITasks(nil, []AIEntry{{Goal: "Fitness", Tasks: []string{"Run 5k"}}}, fixedNow, sequentialIDs())
	goalID, taskID := goals[0].ID, goals[0].Tasks[0].ID

	once, task, ok := ToggleTask(goals, goalID, taskID, fixedNow)
	if !ok {
		t.Fatal("toggle failed")
	}
	if !task.IsCompleted || task.LastCompleted == nil || !task.LastCompleted.Equal(fixedNow) {
		t.Errorf("after first toggle: %+v", task)
	}
	if !task.CompletedOn(fixedNow, time.UTC) {
		t.Error("expected task completed today")
	}

	_, task, _ = ToggleTask(once, goalID, taskID, fixedNow.Add(time.Minute))
	if task.IsCompleted || task.LastCompleted != nil {
		t.Errorf("after second toggle: %+v", task)
	}

	if goals[0].Tasks[0].IsCompleted {
		t.Error("input collection was modified")
	}
}

func TestToggleTaskUnknown(t *testing.T) {
	goals := MergeAITasks(nil, []AIEntry{{Goal: "Fitness", Tasks: []string{"Run"}}}, fixedNow, sequentialIDs())

	if _, _, ok := ToggleTask(goals, uuid.New(), goals[0].Tasks[0].ID, fixedNow); ok {
		t.Error("expected unknown goal to fail")
	}
	if _, _, ok := ToggleTask(goals, goals[0].ID, uuid.New(), fixedNow); ok {
		t.Error("expected unknown task to fail")
	}
}

func TestRemoveTaskIdempotent(t *testing.T) {
	goals := MergeAITasks(nil, []AIEntry{{Goal: "Fitness", Tasks: []string{"Run", "Stretch"}}}, fixedNow, sequentialIDs())
	goalID, taskID := goals[0].ID, goals[0].Tasks[0].ID

	once := RemoveTask(goals, goalID, taskID)
	twice := RemoveTask(once, goalID, taskID)

	if len(once[0].Tasks) != 1 || once[0].Tasks[0].Text != "Stretch" {
		t.Fatalf("unexpected tasks after remove: %+v", once[0].Tasks)
	}
	if len(twice[0].Tasks) != 1 || twice[0].Tasks[0].ID != once[0].Tasks[0].ID {
		t.Errorf("second remove changed the collection: %+v", twice[0].Tasks)
	}
	if len(goals[0].Tasks) != 2 {
		t.Error("input collection was modified")
	}
	if got := RemoveTask(goals, uuid.New(), taskID); len(got[0].Tasks) != 2 {
		t.Error("remove on unknown goal should be a no-op")
	}
}

func TestAppendAndEditTask(t *testing.T) {
	ids := sequentialIDs()
	goals, goal := AddGoal(nil, "Learning", fixedNow, ids)

	out, task, ok := AppendTask(goals, goal.ID, "Read chapter 1", ids)
	if !ok || task.Text != "Read chapter 1" || task.GoalID != goal.ID {
		t.Fatalf("AppendTask() = %+v, %v", task, ok)
	}

	out, edited, ok := EditTask(out, goal.ID, task.ID, "Read chapter 2")
	if !ok || edited.Text != "Read chapter 2" || edited.ID != task.ID {
		t.Fatalf("EditTask() = %+v, %v", edited, ok)
	}
	if out[0].Tasks[0].Text != "Read chapter 2" {
		t.Errorf("collection not updated: %+v", out[0].Tasks)
	}

	if _, _, ok := AppendTask(goals, uuid.New(), "x", ids); ok {
		t.Error("expected AppendTask to fail for unknown goal")
	}
}

func TestAddGoalReturnsExisting(t *testing.T) {
	ids := sequentialIDs()
	goals, first := AddGoal(nil, "Learning", fixedNow, ids)
	goals, again := AddGoal(goals, "Learning", fixedNow.Add(time.Hour), ids)

	if len(goals) != 1 || again.ID != first.ID {
		t.Errorf("expected existing goal, got %+v", goals)
	}
}

func TestCloneIsDeep(t *testing.T) {
	ts := fixedNow
	goals := []models.Goal{{ID: uuid.New(), Tasks: []models.Task{{ID: uuid.New(), LastCompleted: &ts}}}}

	c := Clone(goals)
	c[0].Tasks[0].Text = "changed"
	*c[0].Tasks[0].LastCompleted = fixedNow.Add(time.Hour)

	if goals[0].Tasks[0].Text != "" || !goals[0].Tasks[0].LastCompleted.Equal(fixedNow) {
		t.Error("clone shares memory with the original")
	}
}
