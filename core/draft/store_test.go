package draft

import (
	"errors"
	"testing"
	"time"
)

func TestStoreOwnership(t *testing.T) {
	s := NewStore(time.Hour, 10)
	d := s.Create("u1", sample())

	if d.DraftID == "" || d.DraftID == "d1" {
		t.Fatalf("Create() kept draft id %q", d.DraftID)
	}

	if _, err := s.Get("u2", d.DraftID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Get() by another user error = %v, want ErrForbidden", err)
	}
	if _, err := s.Get("u1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() of unknown id error = %v, want ErrNotFound", err)
	}
	if err := s.Delete("u2", d.DraftID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Delete() by another user error = %v, want ErrForbidden", err)
	}
	if err := s.Delete("u1", d.DraftID); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after delete", s.Len())
	}
}

func TestStoreReplacesCourseDraft(t *testing.T) {
	s := NewStore(time.Hour, 10)

	d := sample()
	d.CourseID = "5"
	first := s.Create("u1", d)
	other := s.Create("u2", d)
	second := s.Create("u1", d)

	if _, err := s.Get("u1", first.DraftID); !errors.Is(err, ErrNotFound) {
		t.Errorf("old draft still present, err = %v", err)
	}
	if _, err := s.Get("u1", second.DraftID); err != nil {
		t.Errorf("new draft missing: %v", err)
	}
	if _, err := s.Get("u2", other.DraftID); err != nil {
		t.Errorf("draft of another user was replaced: %v", err)
	}
}

func TestStoreApplyAndUndo(t *testing.T) {
	s := NewStore(time.Hour, 2)
	d := s.Create("u1", sample())

	if _, err := s.Undo("u1", d.DraftID); !errors.Is(err, ErrNoHistory) {
		t.Fatalf("Undo() on fresh draft error = %v, want ErrNoHistory", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := s.Apply("u1", d.DraftID, AddModule); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
	}

	// No-op edits do not grow the history.
	if _, err := s.Apply("u1", d.DraftID, func(d Draft) Draft { return RemoveModule(d, 99) }); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	got, _ := s.Get("u1", d.DraftID)
	if len(got.Modules) != 5 {
		t.Fatalf("len(Modules) = %d, want 5", len(got.Modules))
	}

	for _, want := range []int{4, 3} {
		u, err := s.Undo("u1", d.DraftID)
		if err != nil {
			t.Fatalf("Undo() error = %v", err)
		}
		if len(u.Modules) != want {
			t.Errorf("after Undo() len(Modules) = %d, want %d", len(u.Modules), want)
		}
		if u.DraftID != d.DraftID {
			t.Errorf("Undo() changed the draft id to %q", u.DraftID)
		}
	}

	if _, err := s.Undo("u1", d.DraftID); !errors.Is(err, ErrNoHistory) {
		t.Errorf("Undo() past the depth error = %v, want ErrNoHistory", err)
	}
}

func TestStoreApplyKeepsDraftID(t *testing.T) {
	s := NewStore(time.Hour, 2)
	d := s.Create("u1", sample())

	got, err := s.Apply("u1", d.DraftID, func(d Draft) Draft {
		d = d.Clone()
		d.DraftID = "forged"
		d.Title = "otro"
		return d
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.DraftID != d.DraftID {
		t.Errorf("DraftID = %q, want %q", got.DraftID, d.DraftID)
	}
}

func TestStoreSubmitGuard(t *testing.T) {
	s := NewStore(time.Hour, 2)
	d := s.Create("u1", sample())

	if _, err := s.BeginSubmit("u1", d.DraftID); err != nil {
		t.Fatalf("BeginSubmit() error = %v", err)
	}
	if _, err := s.BeginSubmit("u1", d.DraftID); !errors.Is(err, ErrSubmitting) {
		t.Errorf("second BeginSubmit() error = %v, want ErrSubmitting", err)
	}
	if _, err := s.Apply("u1", d.DraftID, AddModule); !errors.Is(err, ErrSubmitting) {
		t.Errorf("Apply() during submit error = %v, want ErrSubmitting", err)
	}

	s.EndSubmit(d.DraftID, false)
	if _, err := s.BeginSubmit("u1", d.DraftID); err != nil {
		t.Fatalf("BeginSubmit() after failure error = %v", err)
	}

	s.EndSubmit(d.DraftID, true)
	if _, err := s.Get("u1", d.DraftID); !errors.Is(err, ErrNotFound) {
		t.Errorf("submitted draft still stored, err = %v", err)
	}
}

func TestStoreSweep(t *testing.T) {
	saved := nowFunc
	defer func() { nowFunc = saved }()

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return now }

	s := NewStore(30*time.Minute, 2)
	idle := s.Create("u1", sample())
	busy := s.Create("u2", sample())
	if _, err := s.BeginSubmit("u2", busy.DraftID); err != nil {
		t.Fatal(err)
	}

	now = now.Add(20 * time.Minute)
	fresh := s.Create("u3", sample())

	if n := s.sweep(now.Add(15 * time.Minute)); n != 1 {
		t.Errorf("sweep() removed %d drafts, want 1", n)
	}
	if _, err := s.Get("u1", idle.DraftID); !errors.Is(err, ErrNotFound) {
		t.Errorf("idle draft kept, err = %v", err)
	}
	if _, err := s.Get("u3", fresh.DraftID); err != nil {
		t.Errorf("fresh draft removed: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}
