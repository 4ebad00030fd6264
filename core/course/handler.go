package course

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/course-authoring/api/middleware"
	"github.com/irsalhamdi/course-authoring/api/web"
	"github.com/irsalhamdi/course-authoring/api/weberr"
	"github.com/irsalhamdi/course-authoring/backend"
	"github.com/irsalhamdi/course-authoring/core/claims"
	"github.com/irsalhamdi/course-authoring/core/draft"
	"github.com/irsalhamdi/course-authoring/core/normalize"
	"github.com/irsalhamdi/course-authoring/core/project"
	"github.com/irsalhamdi/course-authoring/validate"
	"github.com/sirupsen/logrus"
)

// backendErr maps a backend failure to the response of this service.
// Anything but a classified status is a bad gateway.
func backendErr(err error) error {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return weberr.NotAuthorized(err)
	case errors.Is(err, backend.ErrForbidden):
		return weberr.Forbidden(err)
	case errors.Is(err, backend.ErrNotFound):
		return weberr.NotFound(err)
	}
	return weberr.BadGateway(err)
}

// load fetches a course and its content. Courses saved without modules
// carry their lessons in a separate listing, which is fetched only then.
func load(ctx context.Context, be Backend, log logrus.FieldLogger, courseID string) (draft.Draft, error) {
	raw, err := be.Course(ctx, courseID)
	if err != nil {
		return draft.Draft{}, fmt.Errorf("fetching course[%s]: %w", courseID, err)
	}

	c, in := normalize.DecodeCourse(raw)
	mods := normalize.Modules(in)

	if len(mods) == 0 {
		lraw, err := be.Lessons(ctx, courseID)
		switch {
		case errors.Is(err, backend.ErrUnauthorized):
			return draft.Draft{}, fmt.Errorf("fetching lessons of course[%s]: %w", courseID, err)
		case err != nil:
			log.WithField("course_id", courseID).Warnf("course loaded without lessons: %v", err)
		default:
			mods = normalize.Modules(normalize.Decode(lraw))
		}
	}

	d := normalize.Draft(c, mods)
	if d.CourseID == "" {
		d.CourseID = courseID
	}
	return d, nil
}

func HandleLoad(store *draft.Store, be Backend, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		courseID := web.Param(r, "course_id")
		log := log.WithField("req_id", middleware.ContextRequestID(ctx))

		d, err := load(ctx, be, log, courseID)
		if err != nil {
			return backendErr(err)
		}

		d = store.Create(clm.UserID, d)

		return web.Respond(ctx, w, d, http.StatusCreated)
	}
}

func HandlePayload(store *draft.Store, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		d, err := store.Get(clm.UserID, id)
		if err != nil {
			return draft.WebErr(err, id)
		}

		p := project.Project(d, log.WithField("req_id", middleware.ContextRequestID(ctx)))

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

// HandleSubmit validates the draft, writes it to the backend and discards
// it. A draft can only be submitted once at a time; a failed submission
// leaves it editable.
func HandleSubmit(store *draft.Store, be Backend, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		d, err := store.BeginSubmit(clm.UserID, id)
		if err != nil {
			return draft.WebErr(err, id)
		}

		var succeeded bool
		defer func() { store.EndSubmit(id, succeeded) }()

		if err := validate.Check(d); err != nil {
			fields, _ := validate.Fields(err)
			return weberr.Unprocessable(err, fields, weberr.WithFields(map[string]interface{}{"draft_id": id}))
		}

		log := log.WithFields(logrus.Fields{
			"req_id":   middleware.ContextRequestID(ctx),
			"draft_id": id,
		})
		p := project.Project(d, log)

		var (
			raw    []byte
			status = http.StatusOK
		)
		if d.CourseID == "" {
			raw, err = be.CreateCourse(ctx, p)
			status = http.StatusCreated
		} else {
			raw, err = be.UpdateCourse(ctx, d.CourseID, p)
		}
		if err != nil {
			return backendErr(fmt.Errorf("submitting draft[%s]: %w", id, err))
		}

		res := Submitted{CourseID: d.CourseID, Created: d.CourseID == ""}
		if c, _ := normalize.DecodeCourse(raw); c.ID.String() != "" {
			res.CourseID = c.ID.String()
		}
		succeeded = true

		log.WithField("course_id", res.CourseID).Info("draft submitted")

		return web.Respond(ctx, w, res, status)
	}
}

func HandleListCategories(be Backend) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		raw, err := be.Categories(ctx)
		if err != nil {
			return backendErr(fmt.Errorf("fetching categories: %w", err))
		}

		return respondRaw(ctx, w, raw)
	}
}

func HandleListSubcategories(be Backend) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		raw, err := be.Subcategories(ctx, id)
		if err != nil {
			return backendErr(fmt.Errorf("fetching subcategories of category[%s]: %w", id, err))
		}

		return respondRaw(ctx, w, raw)
	}
}

// respondRaw relays a backend body as is, once it is known to be JSON.
func respondRaw(ctx context.Context, w http.ResponseWriter, raw []byte) error {
	if !json.Valid(raw) {
		return weberr.BadGateway(errors.New("backend answered with invalid json"))
	}
	return web.Respond(ctx, w, json.RawMessage(raw), http.StatusOK)
}
