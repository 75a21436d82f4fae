package mirror

import (
	"context"
	"testing"
	"time"

	"github.com/freedompraise/lockedin/internal/apperr"
	"github.com/freedompraise/lockedin/internal/localstore"
	"github.com/freedompraise/lockedin/internal/models"
	"github.com/google/uuid"
)

var wat = time.FixedZone("WAT", 3600)

func setupMirror(t *testing.T, now *time.Time) (*Mirror, localstore.Store, uuid.UUID) {
	t.Helper()
	store, err := localstore.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	userID := uuid.New()
	m, err := Open(context.Background(), store, userID, wat)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	m.WithClock(func() time.Time { return *now })
	return m, store, userID
}

func TestOpenEmpty(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, wat)
	m, _, _ := setupMirror(t, &now)

	if tasks := m.Tasks(); tasks == nil || len(tasks) != 0 {
		t.Errorf("Tasks() = %#v, want empty list", tasks)
	}
}

func TestMutationsPersistImmediately(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, wat)
	m, store, userID := setupMirror(t, &now)

	a, err := m.Add(ctx, "  Drink water ")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if a.Goal != "Drink water" || a.IsCompleted || a.LastCompletedDate != "" {
		t.Errorf("Add() = %+v", a)
	}
	b, _ := m.Add(ctx, "Read")
	if _, err := m.Edit(ctx, b.ID, "Read 20 pages"); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if _, err := m.Toggle(ctx, a.ID); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	reopened, err := Open(ctx, store, userID, wat)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got := reopened.Tasks()
	if len(got) != 2 {
		t.Fatalf("reopened mirror has %d tasks, want 2", len(got))
	}
	if !got[0].IsCompleted || got[0].LastCompletedDate != "Mon Oct 19 2026" {
		t.Errorf("task 0 = %+v", got[0])
	}
	if got[1].Goal != "Read 20 pages" {
		t.Errorf("task 1 = %+v", got[1])
	}

	if err := m.Remove(ctx, a.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := m.Remove(ctx, a.ID); err != nil {
		t.Fatalf("Remove() twice error = %v", err)
	}
	reopened, _ = Open(ctx, store, userID, wat)
	if got := reopened.Tasks(); len(got) != 1 || got[0].ID != b.ID {
		t.Errorf("after remove: %+v", got)
	}
}

func TestAddRejectsBlank(t *testing.T) {
	now := time.Now()
	m, _, _ := setupMirror(t, &now)

	if _, err := m.Add(context.Background(), "   "); !apperr.Is(err, apperr.Validation) {
		t.Errorf("Add(blank) error = %v, want validation", err)
	}
	if len(m.Tasks()) != 0 {
		t.Error("blank add changed the list")
	}
}

func TestUnknownTask(t *testing.T) {
	now := time.Now()
	m, _, _ := setupMirror(t, &now)
	ctx := context.Background()

	if _, err := m.Toggle(ctx, uuid.New()); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("Toggle(unknown) error = %v", err)
	}
	if _, err := m.Edit(ctx, uuid.New(), "x"); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("Edit(unknown) error = %v", err)
	}
}

func TestToggleTwiceSameDayLeavesIncomplete(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, wat)
	m, _, _ := setupMirror(t, &now)
	task, _ := m.Add(ctx, "Meditate")

	first, _ := m.Toggle(ctx, task.ID)
	if !first.IsCompleted {
		t.Fatalf("first toggle = %+v", first)
	}

	now = now.Add(3 * time.Hour)
	second, _ := m.Toggle(ctx, task.ID)
	if second.IsCompleted || second.LastCompletedDate != "" {
		t.Errorf("second toggle on same day = %+v, want incomplete", second)
	}
}

func TestToggleNextDayCompletesAgain(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 23, 30, 0, 0, wat)
	m, _, _ := setupMirror(t, &now)
	task, _ := m.Add(ctx, "Meditate")

	m.Toggle(ctx, task.ID)

	now = now.Add(time.Hour)
	got, _ := m.Toggle(ctx, task.ID)
	if !got.IsCompleted || got.LastCompletedDate != "Tue Oct 20 2026" {
		t.Errorf("toggle on next day = %+v, want completed today", got)
	}
}

func TestToggleUsesLocationDay(t *testing.T) {
	ctx := context.Background()
	// 23:30 UTC is already the next day at UTC+01:00.
	now := time.Date(2026, 10, 19, 23, 30, 0, 0, time.UTC)
	m, _, _ := setupMirror(t, &now)
	task, _ := m.Add(ctx, "Journal")

	got, _ := m.Toggle(ctx, task.ID)
	if got.LastCompletedDate != "Tue Oct 20 2026" {
		t.Errorf("LastCompletedDate = %q", got.LastCompletedDate)
	}
}

func TestRegistrySharesMirror(t *testing.T) {
	store, err := localstore.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	reg := NewRegistry(store, wat)
	userID := uuid.New()

	a, err := reg.Get(context.Background(), userID)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := reg.Get(context.Background(), userID)
	if a != b {
		t.Error("expected the same mirror for one user")
	}
}

func TestRegistryDropKeepsStoredList(t *testing.T) {
	ctx := context.Background()
	store, err := localstore.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	reg := NewRegistry(store, wat)
	userID := uuid.New()

	m, _ := reg.Get(ctx, userID)
	if _, err := m.Add(ctx, "Water"); err != nil {
		t.Fatal(err)
	}

	reg.Drop(userID)
	again, err := reg.Get(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if again == m {
		t.Error("expected a new mirror after Drop")
	}
	if tasks := again.Tasks(); len(tasks) != 1 || tasks[0].Goal != "Water" {
		t.Errorf("tasks after Drop = %+v", tasks)
	}
}

func TestKeyRoundTrip(t *testing.T) {
	id := uuid.New()
	got, ok := UserIDFromKey(Key(id))
	if !ok || got != id {
		t.Errorf("UserIDFromKey(Key(id)) = %s, %v", got, ok)
	}
	if _, ok := UserIDFromKey("tasks:not-a-uuid"); ok {
		t.Error("expected invalid id to fail")
	}
	if _, ok := UserIDFromKey("userProfile:" + id.String()); ok {
		t.Error("expected wrong prefix to fail")
	}
}

func TestReconcile(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, wat)
	otherID := uuid.New()
	current := []models.Goal{
		{ID: otherID, Name: "Fitness", Tasks: []models.Task{{ID: uuid.New(), GoalID: otherID, Text: "Run"}}},
	}
	done := models.LocalTask{ID: uuid.New(), Goal: "Water", IsCompleted: true, LastCompletedDate: "Mon Oct 19 2026"}
	open := models.LocalTask{ID: uuid.New(), Goal: "Read"}

	got := Reconcile(current, []models.LocalTask{done, open}, DefaultGoalName, wat, now, uuid.New)
	if len(got) != 2 {
		t.Fatalf("expected 2 goals, got %d", len(got))
	}
	if got[0].ID != otherID || len(got[0].Tasks) != 1 {
		t.Errorf("unrelated goal changed: %+v", got[0])
	}

	daily := got[1]
	if daily.Name != DefaultGoalName || len(daily.Tasks) != 2 {
		t.Fatalf("daily goal = %+v", daily)
	}
	if daily.Tasks[0].ID != done.ID || daily.Tasks[0].GoalID != daily.ID {
		t.Errorf("task ids not carried over: %+v", daily.Tasks[0])
	}
	want := time.Date(2026, 10, 19, 0, 0, 0, 0, wat)
	if lc := daily.Tasks[0].LastCompleted; lc == nil || !lc.Equal(want) {
		t.Errorf("LastCompleted = %v, want %v", lc, want)
	}
	if daily.Tasks[1].IsCompleted || daily.Tasks[1].LastCompleted != nil {
		t.Errorf("open task = %+v", daily.Tasks[1])
	}

	// A second pass replaces the owned goal's tasks and keeps its identity.
	again := Reconcile(got, []models.LocalTask{open}, DefaultGoalName, wat, now.Add(time.Hour), uuid.New)
	if len(again) != 2 || again[1].ID != daily.ID || !again[1].CreatedAt.Equal(daily.CreatedAt) {
		t.Fatalf("owned goal identity changed: %+v", again)
	}
	if len(again[1].Tasks) != 1 || again[1].Tasks[0].ID != open.ID {
		t.Errorf("tasks not replaced: %+v", again[1].Tasks)
	}
	if len(got[1].Tasks) != 2 {
		t.Error("input collection was modified")
	}
}

func TestReconcileKeepsTasksFromElsewhere(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, wat)
	dailyID := uuid.New()
	imported := models.Task{ID: uuid.New(), GoalID: dailyID, Text: "Meditate"}
	synced := models.Task{ID: uuid.New(), GoalID: dailyID, Text: "Old", Source: models.TaskSourceMirror}
	current := []models.Goal{{ID: dailyID, Name: DefaultGoalName, Tasks: []models.Task{imported, synced}}}
	local := models.LocalTask{ID: uuid.New(), Goal: "Water"}

	got := Reconcile(current, []models.LocalTask{local}, DefaultGoalName, wat, now, uuid.New)

	tasks := got[0].Tasks
	if len(tasks) != 2 {
		t.Fatalf("tasks = %+v", tasks)
	}
	if tasks[0].ID != imported.ID || tasks[0].Source != "" {
		t.Errorf("imported task not kept: %+v", tasks[0])
	}
	if tasks[1].ID != local.ID || tasks[1].Source != models.TaskSourceMirror {
		t.Errorf("synced task = %+v", tasks[1])
	}
}
