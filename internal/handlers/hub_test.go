package handlers

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/freedompraise/lockedin/internal/logger"
	"github.com/google/uuid"
)

type recordingConn struct {
	mu   sync.Mutex
	msgs [][]byte
	err  error
}

func (r *recordingConn) WriteMessage(messageType int, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, data)
	return nil
}

func TestHubBroadcastsToUserOnly(t *testing.T) {
	hub := NewHub(logger.Nop())
	ada, bob := uuid.New(), uuid.New()

	tab1 := &recordingConn{}
	tab2 := &recordingConn{}
	broken := &recordingConn{err: errors.New("closed")}
	other := &recordingConn{}

	hub.register(&connection{conn: tab1, userID: ada})
	hub.register(&connection{conn: tab2, userID: ada})
	hub.register(&connection{conn: broken, userID: ada})
	otherConn := &connection{conn: other, userID: bob}
	hub.register(otherConn)

	if got := hub.Connections(ada); got != 3 {
		t.Errorf("Connections(ada) = %d, want 3", got)
	}

	hub.Broadcast(ada, WSEvent{Type: EventProfileUpdated, UserID: ada.String()})

	for i, c := range []*recordingConn{tab1, tab2} {
		if len(c.msgs) != 1 {
			t.Fatalf("tab %d got %d messages", i+1, len(c.msgs))
		}
		var ev WSEvent
		if err := json.Unmarshal(c.msgs[0], &ev); err != nil {
			t.Fatal(err)
		}
		if ev.Type != EventProfileUpdated || ev.UserID != ada.String() {
			t.Errorf("event = %+v", ev)
		}
	}
	if len(other.msgs) != 0 {
		t.Error("another user's socket got the event")
	}

	hub.unregister(otherConn)
	if hub.Connections(bob) != 0 {
		t.Error("room not removed after last connection left")
	}
	hub.Broadcast(bob, WSEvent{Type: EventProfileUpdated})
}
