package draft

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"time"

	"github.com/irsalhamdi/course-authoring/validate"
)

var (
	ErrNotFound   = errors.New("draft not found")
	ErrForbidden  = errors.New("draft belongs to another user")
	ErrSubmitting = errors.New("draft submission already in progress")
	ErrNoHistory  = errors.New("nothing to undo")
)

// Store keeps the drafts being edited, keyed by draft id. Every change
// replaces the stored value with a new Draft; the previous one goes on a
// bounded undo stack.
type Store struct {
	TTL       time.Duration
	UndoDepth int
	drafts    map[string]*entry
	mu        sync.Mutex
}

type entry struct {
	owner      string
	draft      Draft
	history    []Draft
	submitting bool
	lastAccess time.Time
}

func NewStore(ttl time.Duration, undoDepth int) *Store {
	return &Store{
		TTL:       ttl,
		UndoDepth: undoDepth,
		drafts:    make(map[string]*entry),
	}
}

// Run discards drafts idle for longer than TTL until ctx is done.
func (s *Store) Run(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(nowFunc())
		}
	}
}

func (s *Store) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for id, e := range s.drafts {
		if e.submitting {
			continue
		}
		if now.Sub(e.lastAccess) > s.TTL {
			delete(s.drafts, id)
			n++
		}
	}
	return n
}

// Create stores d under a new draft id. A draft loaded from an existing
// course replaces any other draft the same owner has open for that course.
func (s *Store) Create(owner string, d Draft) Draft {
	d = d.Clone()
	d.DraftID = validate.GenerateID()

	s.mu.Lock()
	defer s.mu.Unlock()

	if d.CourseID != "" {
		for id, e := range s.drafts {
			if e.owner == owner && e.draft.CourseID == d.CourseID && !e.submitting {
				delete(s.drafts, id)
			}
		}
	}

	s.drafts[d.DraftID] = &entry{owner: owner, draft: d, lastAccess: nowFunc()}
	return d
}

func (s *Store) lookup(owner, id string) (*entry, error) {
	if err := validate.CheckID(id); err != nil {
		return nil, ErrNotFound
	}
	e, ok := s.drafts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if e.owner != owner {
		return nil, ErrForbidden
	}
	e.lastAccess = nowFunc()
	return e, nil
}

func (s *Store) Get(owner, id string) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(owner, id)
	if err != nil {
		return Draft{}, err
	}
	return e.draft, nil
}

// Apply replaces the draft with op's result. Drafts are not editable while a
// submission is in flight.
func (s *Store) Apply(owner, id string, op func(Draft) Draft) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(owner, id)
	if err != nil {
		return Draft{}, err
	}
	if e.submitting {
		return Draft{}, ErrSubmitting
	}

	next := op(e.draft)
	next.DraftID = e.draft.DraftID
	if reflect.DeepEqual(next, e.draft) {
		return e.draft, nil
	}

	e.history = append(e.history, e.draft)
	if s.UndoDepth > 0 && len(e.history) > s.UndoDepth {
		e.history = e.history[len(e.history)-s.UndoDepth:]
	}
	e.draft = next
	return next, nil
}

func (s *Store) Undo(owner, id string) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(owner, id)
	if err != nil {
		return Draft{}, err
	}
	if e.submitting {
		return Draft{}, ErrSubmitting
	}
	if len(e.history) == 0 {
		return Draft{}, ErrNoHistory
	}

	last := len(e.history) - 1
	e.draft = e.history[last]
	e.history = e.history[:last]
	return e.draft, nil
}

func (s *Store) Delete(owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(owner, id)
	if err != nil {
		return err
	}
	if e.submitting {
		return ErrSubmitting
	}
	delete(s.drafts, id)
	return nil
}

// BeginSubmit marks the draft as being submitted and returns it. Only one
// submission per draft can be in flight; the others get ErrSubmitting.
func (s *Store) BeginSubmit(owner, id string) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(owner, id)
	if err != nil {
		return Draft{}, err
	}
	if e.submitting {
		return Draft{}, ErrSubmitting
	}
	e.submitting = true
	return e.draft, nil
}

// EndSubmit clears the submission mark. A successful submission discards the
// draft.
func (s *Store) EndSubmit(id string, succeeded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.drafts[id]
	if !ok {
		return
	}
	if succeeded {
		delete(s.drafts, id)
		return
	}
	e.submitting = false
	e.lastAccess = nowFunc()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}
