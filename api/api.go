package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/course-authoring/api/middleware"
	"github.com/irsalhamdi/course-authoring/api/web"
	"github.com/irsalhamdi/course-authoring/core/auth"
	"github.com/irsalhamdi/course-authoring/core/course"
	"github.com/irsalhamdi/course-authoring/core/draft"
	"github.com/irsalhamdi/course-authoring/rate"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin string
	Log        logrus.FieldLogger
	Session    *scs.SessionManager
	Drafts     *draft.Store
	Backend    course.Backend
	Users      auth.Users
	Limiter    *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Session)

	var limit web.Middleware
	if cfg.Limiter != nil {
		limit = middleware.RateLimit(cfg.Limiter)
	}

	a.Handle(http.MethodPost, "/auth/session", auth.HandleSession(cfg.Session, cfg.Users), limit)
	a.Handle(http.MethodGet, "/auth/session", auth.HandleShow(), authen)
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session))

	a.Handle(http.MethodGet, "/categories", course.HandleListCategories(cfg.Backend), authen)
	a.Handle(http.MethodGet, "/categories/{id}/subcategories", course.HandleListSubcategories(cfg.Backend), authen)

	a.Handle(http.MethodPost, "/courses/{course_id}/drafts", course.HandleLoad(cfg.Drafts, cfg.Backend, cfg.Log), authen, limit)

	a.Handle(http.MethodPost, "/drafts", draft.HandleCreate(cfg.Drafts), authen, limit)
	a.Handle(http.MethodGet, "/drafts/{id}", draft.HandleShow(cfg.Drafts), authen)
	a.Handle(http.MethodPut, "/drafts/{id}", draft.HandleUpdate(cfg.Drafts), authen, limit)
	a.Handle(http.MethodDelete, "/drafts/{id}", draft.HandleDelete(cfg.Drafts), authen)
	a.Handle(http.MethodPost, "/drafts/{id}/undo", draft.HandleUndo(cfg.Drafts), authen, limit)
	a.Handle(http.MethodGet, "/drafts/{id}/payload", course.HandlePayload(cfg.Drafts, cfg.Log), authen)
	a.Handle(http.MethodPost, "/drafts/{id}/submit", course.HandleSubmit(cfg.Drafts, cfg.Backend, cfg.Log), authen, limit)

	a.Handle(http.MethodPost, "/drafts/{id}/modules", draft.HandleAddModule(cfg.Drafts), authen, limit)
	a.Handle(http.MethodPut, "/drafts/{id}/modules/{m}", draft.HandleUpdateModule(cfg.Drafts), authen, limit)
	a.Handle(http.MethodDelete, "/drafts/{id}/modules/{m}", draft.HandleRemoveModule(cfg.Drafts), authen, limit)
	a.Handle(http.MethodPost, "/drafts/{id}/modules/{m}/sort", draft.HandleSortModule(cfg.Drafts), authen, limit)

	a.Handle(http.MethodPost, "/drafts/{id}/modules/{m}/lessons", draft.HandleAddLesson(cfg.Drafts), authen, limit)
	a.Handle(http.MethodPut, "/drafts/{id}/modules/{m}/lessons/{l}", draft.HandleUpdateLesson(cfg.Drafts), authen, limit)
	a.Handle(http.MethodDelete, "/drafts/{id}/modules/{m}/lessons/{l}", draft.HandleRemoveLesson(cfg.Drafts), authen, limit)
	a.Handle(http.MethodPost, "/drafts/{id}/modules/{m}/lessons/{l}/up", draft.HandleMoveLessonUp(cfg.Drafts), authen, limit)
	a.Handle(http.MethodPost, "/drafts/{id}/modules/{m}/lessons/{l}/down", draft.HandleMoveLessonDown(cfg.Drafts), authen, limit)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
