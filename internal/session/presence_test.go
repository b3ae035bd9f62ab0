package session

import (
	"testing"

	"collabedit/internal/models"
)

func TestRegistryAddListOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Add("r1", models.RoomUser{ID: "a", Username: "alice"})
	reg.Add("r1", models.RoomUser{ID: "b", Username: "bob"})
	reg.Add("r1", models.RoomUser{ID: "c", Username: "carol"})

	users := reg.List("r1")
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	for i, want := range []string{"a", "b", "c"} {
		if users[i].ID != want {
			t.Fatalf("expected join order preserved, got %#v", users)
		}
	}
}

func TestRegistryAddOverwritesOnCollision(t *testing.T) {
	reg := NewRegistry()
	reg.Add("r1", models.RoomUser{ID: "a", Username: "alice"})
	reg.Add("r1", models.RoomUser{ID: "a", Username: "alice2"})

	users := reg.List("r1")
	if len(users) != 1 {
		t.Fatalf("collision must not duplicate, got %#v", users)
	}
	if users[0].Username != "alice2" {
		t.Fatalf("collision must overwrite, got %#v", users[0])
	}
}

func TestRegistryRemove(t *testing.T) {
	reg := NewRegistry()
	reg.Add("r1", models.RoomUser{ID: "a"})
	reg.Add("r1", models.RoomUser{ID: "b"})

	if !reg.Remove("r1", "a") {
		t.Fatalf("expected removal of present key")
	}
	if reg.Remove("r1", "a") {
		t.Fatalf("removing absent key must report false")
	}
	if reg.Remove("nope", "a") {
		t.Fatalf("removing from unknown room must report false")
	}

	users := reg.List("r1")
	if len(users) != 1 || users[0].ID != "b" {
		t.Fatalf("unexpected remaining users: %#v", users)
	}
}

func TestRegistryEmptyRoomIsCollected(t *testing.T) {
	reg := NewRegistry()
	reg.Add("r1", models.RoomUser{ID: "a"})
	reg.Remove("r1", "a")

	if reg.Count("r1") != 0 {
		t.Fatalf("expected empty room")
	}
	if users := reg.List("r1"); users != nil {
		t.Fatalf("expected nil list for empty room, got %#v", users)
	}
}

func TestRegistryUpdateCursor(t *testing.T) {
	reg := NewRegistry()
	reg.Add("r1", models.RoomUser{ID: "a", Username: "alice"})

	if !reg.UpdateCursor("r1", "a", models.CursorPosition{LineNumber: 2, Column: 5}) {
		t.Fatalf("expected cursor update to succeed")
	}
	if reg.UpdateCursor("r1", "missing", models.CursorPosition{}) {
		t.Fatalf("updating absent key must report false")
	}
	if reg.UpdateCursor("nope", "a", models.CursorPosition{}) {
		t.Fatalf("updating unknown room must report false")
	}

	users := reg.List("r1")
	if users[0].Cursor == nil || users[0].Cursor.LineNumber != 2 || users[0].Cursor.Column != 5 {
		t.Fatalf("cursor not updated in place: %#v", users[0])
	}
	if users[0].Username != "alice" {
		t.Fatalf("update must not disturb other fields: %#v", users[0])
	}
}
