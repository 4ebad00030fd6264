// Package auth keeps the caller's course backend credentials in a server
// side session. Logging in happens against the backend itself: this service
// is handed the bearer token, asks the backend whose it is, and forgets it on
// logout or when the backend rejects it.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/course-authoring/api/web"
	"github.com/irsalhamdi/course-authoring/api/weberr"
	"github.com/irsalhamdi/course-authoring/backend"
	"github.com/irsalhamdi/course-authoring/core/claims"
	"github.com/irsalhamdi/course-authoring/validate"
	"github.com/sirupsen/logrus"
)

const (
	userIDKey = "userID"
	roleKey   = "role"
	tokenKey  = "token"
)

// SessionNew carries the token to log in with. UserID is optional; when
// given it must match the account the backend reports for the token.
type SessionNew struct {
	Token  string `json:"token" validate:"required"`
	UserID string `json:"userId"`
}

// Users resolves the account behind the bearer token in ctx.
// backend.Client implements it.
type Users interface {
	CurrentUser(ctx context.Context) (backend.User, error)
}

type Session struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// LoadAndSave loads the session of the request and saves it once the handler
// is done.
func LoadAndSave(session *scs.SessionManager) web.Middleware {
	return web.Adapt(session.LoadAndSave)
}

// Authenticate rejects requests without a stored token and puts the
// caller's claims in the context.
func Authenticate(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			token := session.GetString(ctx, tokenKey)
			userID := session.GetString(ctx, userIDKey)
			if token == "" || userID == "" {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			ctx = claims.Set(ctx, claims.Claims{
				UserID: userID,
				Role:   session.GetString(ctx, roleKey),
				Token:  token,
			})

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// Logout returns the hook run when the course backend answers 401: the
// stored token is no longer good, so the session goes away with it.
func Logout(session *scs.SessionManager, log logrus.FieldLogger) func(ctx context.Context) {
	return func(ctx context.Context) {
		clm, _ := claims.Get(ctx)
		if err := session.Destroy(ctx); err != nil {
			log.WithField("user_id", clm.UserID).Errorf("destroying session after 401: %v", err)
			return
		}
		log.WithField("user_id", clm.UserID).Info("backend rejected token, session destroyed")
	}
}

func HandleSession(session *scs.SessionManager, users Users) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in SessionNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			fields, _ := validate.Fields(err)
			return weberr.Unprocessable(err, fields)
		}

		u, err := users.CurrentUser(claims.Set(ctx, claims.Claims{Token: in.Token}))
		switch {
		case errors.Is(err, backend.ErrUnauthorized), errors.Is(err, backend.ErrForbidden):
			return weberr.NotAuthorized(fmt.Errorf("checking token: %w", err))
		case err != nil:
			return weberr.BadGateway(fmt.Errorf("checking token: %w", err))
		}

		if in.UserID != "" && in.UserID != u.ID {
			return weberr.NotAuthorized(
				errors.New("token belongs to another user"),
				weberr.WithFields(map[string]interface{}{"user_id": in.UserID}),
			)
		}

		role := strings.ToUpper(u.Role)
		if role != claims.RoleAdmin {
			role = claims.RoleInstructor
		}

		if err := session.RenewToken(ctx); err != nil {
			return fmt.Errorf("renewing session token: %w", err)
		}

		session.Put(ctx, tokenKey, in.Token)
		session.Put(ctx, userIDKey, u.ID)
		session.Put(ctx, roleKey, role)

		return web.Respond(ctx, w, Session{UserID: u.ID, Role: role}, http.StatusCreated)
	}
}

func HandleShow() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		return web.Respond(ctx, w, Session{UserID: clm.UserID, Role: clm.Role}, http.StatusOK)
	}
}

func HandleLogout(session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := session.Destroy(ctx); err != nil {
			return fmt.Errorf("destroying session: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
