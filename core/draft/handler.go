package draft

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/course-authoring/api/web"
	"github.com/irsalhamdi/course-authoring/api/weberr"
	"github.com/irsalhamdi/course-authoring/core/claims"
	"github.com/irsalhamdi/course-authoring/validate"
)

type LessonNew struct {
	Type LessonType `json:"type" validate:"omitempty,oneof=video text quiz document"`
}

// WebErr maps store errors to their HTTP response.
func WebErr(err error, draftID string) error {
	opt := weberr.WithFields(map[string]interface{}{"draft_id": draftID})
	switch {
	case errors.Is(err, ErrNotFound):
		return weberr.NotFound(err, opt)
	case errors.Is(err, ErrForbidden):
		return weberr.Forbidden(err, opt)
	case errors.Is(err, ErrSubmitting), errors.Is(err, ErrNoHistory):
		return weberr.Conflict(err, opt)
	}
	return err
}

func invalid(err error) error {
	fields, _ := validate.Fields(err)
	return weberr.Unprocessable(err, fields)
}

func HandleCreate(store *Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		d := New()
		d.InstructorID = clm.UserID
		d = store.Create(clm.UserID, d)

		return web.Respond(ctx, w, d, http.StatusCreated)
	}
}

func HandleShow(store *Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		d, err := store.Get(clm.UserID, id)
		if err != nil {
			return WebErr(err, id)
		}

		return web.Respond(ctx, w, d, http.StatusOK)
	}
}

func HandleDelete(store *Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := store.Delete(clm.UserID, id); err != nil {
			return WebErr(err, id)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleUndo(store *Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		d, err := store.Undo(clm.UserID, id)
		if err != nil {
			return WebErr(err, id)
		}

		return web.Respond(ctx, w, d, http.StatusOK)
	}
}

// op is one edit of a draft. It fails when the module or lesson it targets
// does not exist.
type op func(Draft) (Draft, error)

// handleEdit builds the op from the request, outside the store lock, then
// applies it to the caller's draft.
func handleEdit(store *Store, prepare func(w http.ResponseWriter, r *http.Request) (op, error)) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		edit, err := prepare(w, r)
		if err != nil {
			return err
		}

		id := web.Param(r, "id")
		var editErr error
		d, err := store.Apply(clm.UserID, id, func(d Draft) Draft {
			next, err := edit(d)
			if err != nil {
				editErr = err
				return d
			}
			return next
		})
		if err != nil {
			return WebErr(err, id)
		}
		if editErr != nil {
			return weberr.NotFound(editErr, weberr.WithFields(map[string]interface{}{"draft_id": id}))
		}

		return web.Respond(ctx, w, d, http.StatusOK)
	}
}

func moduleIndex(r *http.Request) (int, error) {
	m, err := web.ParamIndex(r, "m")
	if err != nil {
		return 0, weberr.NotFound(err)
	}
	return m, nil
}

func lessonIndex(r *http.Request) (int, int, error) {
	m, err := moduleIndex(r)
	if err != nil {
		return 0, 0, err
	}
	l, err := web.ParamIndex(r, "l")
	if err != nil {
		return 0, 0, weberr.NotFound(err)
	}
	return m, l, nil
}

func checkModule(d Draft, m int) error {
	if !d.HasModule(m) {
		return fmt.Errorf("module %d not found", m)
	}
	return nil
}

func checkLesson(d Draft, m, l int) error {
	if !d.HasLesson(m, l) {
		return fmt.Errorf("lesson %d of module %d not found", l, m)
	}
	return nil
}

// onModule runs f when module m exists.
func onModule(m int, f func(Draft) Draft) op {
	return func(d Draft) (Draft, error) {
		if err := checkModule(d, m); err != nil {
			return d, err
		}
		return f(d), nil
	}
}

// onLesson runs f when lesson l of module m exists.
func onLesson(m, l int, f func(Draft) Draft) op {
	return func(d Draft) (Draft, error) {
		if err := checkLesson(d, m, l); err != nil {
			return d, err
		}
		return f(d), nil
	}
}

func HandleUpdate(store *Store) web.Handler {
	return handleEdit(store, func(w http.ResponseWriter, r *http.Request) (op, error) {
		var up CourseUp
		if err := web.Decode(w, r, &up); err != nil {
			return nil, weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}
		if err := validate.Check(up); err != nil {
			return nil, invalid(err)
		}

		return func(d Draft) (Draft, error) {
			return UpdateCourse(d, up), nil
		}, nil
	})
}

func HandleAddModule(store *Store) web.Handler {
	return handleEdit(store, func(w http.ResponseWriter, r *http.Request) (op, error) {
		return func(d Draft) (Draft, error) {
			return AddModule(d), nil
		}, nil
	})
}

func HandleUpdateModule(store *Store) web.Handler {
	return handleEdit(store, func(w http.ResponseWriter, r *http.Request) (op, error) {
		m, err := moduleIndex(r)
		if err != nil {
			return nil, err
		}

		var up ModuleUp
		if err := web.Decode(w, r, &up); err != nil {
			return nil, weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		return onModule(m, func(d Draft) Draft { return UpdateModule(d, m, up) }), nil
	})
}

func HandleRemoveModule(store *Store) web.Handler {
	return handleEdit(store, func(w http.ResponseWriter, r *http.Request) (op, error) {
		m, err := moduleIndex(r)
		if err != nil {
			return nil, err
		}
		return onModule(m, func(d Draft) Draft { return RemoveModule(d, m) }), nil
	})
}

func HandleSortModule(store *Store) web.Handler {
	return handleEdit(store, func(w http.ResponseWriter, r *http.Request) (op, error) {
		m, err := moduleIndex(r)
		if err != nil {
			return nil, err
		}
		return onModule(m, func(d Draft) Draft { return SortLessonsByVideoPresence(d, m) }), nil
	})
}

func HandleAddLesson(store *Store) web.Handler {
	return handleEdit(store, func(w http.ResponseWriter, r *http.Request) (op, error) {
		m, err := moduleIndex(r)
		if err != nil {
			return nil, err
		}

		var ln LessonNew
		if err := web.Decode(w, r, &ln); err != nil {
			return nil, weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}
		if err := validate.Check(ln); err != nil {
			return nil, invalid(err)
		}
		if ln.Type == "" {
			ln.Type = Video
		}

		return onModule(m, func(d Draft) Draft { return AddLesson(d, m, ln.Type) }), nil
	})
}

func HandleUpdateLesson(store *Store) web.Handler {
	return handleEdit(store, func(w http.ResponseWriter, r *http.Request) (op, error) {
		m, l, err := lessonIndex(r)
		if err != nil {
			return nil, err
		}

		var up LessonUp
		if err := web.Decode(w, r, &up); err != nil {
			return nil, weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}
		if err := validate.Check(up); err != nil {
			return nil, invalid(err)
		}

		return onLesson(m, l, func(d Draft) Draft { return UpdateLesson(d, m, l, up) }), nil
	})
}

func HandleRemoveLesson(store *Store) web.Handler {
	return handleEdit(store, func(w http.ResponseWriter, r *http.Request) (op, error) {
		m, l, err := lessonIndex(r)
		if err != nil {
			return nil, err
		}
		return onLesson(m, l, func(d Draft) Draft { return RemoveLesson(d, m, l) }), nil
	})
}

func HandleMoveLessonUp(store *Store) web.Handler {
	return handleEdit(store, func(w http.ResponseWriter, r *http.Request) (op, error) {
		m, l, err := lessonIndex(r)
		if err != nil {
			return nil, err
		}
		return onLesson(m, l, func(d Draft) Draft { return MoveLessonUp(d, m, l) }), nil
	})
}

func HandleMoveLessonDown(store *Store) web.Handler {
	return handleEdit(store, func(w http.ResponseWriter, r *http.Request) (op, error) {
		m, l, err := lessonIndex(r)
		if err != nil {
			return nil, err
		}
		return onLesson(m, l, func(d Draft) Draft { return MoveLessonDown(d, m, l) }), nil
	})
}
