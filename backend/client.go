// Package backend is the client of the course backend REST API. Requests run
// on behalf of the caller found in the context: its bearer token is attached
// to every call.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/irsalhamdi/course-authoring/api/middleware"
	"github.com/irsalhamdi/course-authoring/core/claims"
	"github.com/irsalhamdi/course-authoring/core/normalize"
	"github.com/irsalhamdi/course-authoring/core/project"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnauthorized = errors.New("backend rejected the credentials")
	ErrForbidden    = errors.New("backend denied access")
	ErrNotFound     = errors.New("backend resource not found")
)

// StatusError is any other failed response.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: backend responded %d", e.Method, e.URL, e.Status)
}

type Config struct {
	BaseURL   string
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
}

type Client struct {
	rc  *resty.Client
	log logrus.FieldLogger

	// OnUnauthorized runs with the request context whenever the backend
	// answers 401, before the call returns ErrUnauthorized.
	OnUnauthorized func(ctx context.Context)
}

func New(cfg Config, log logrus.FieldLogger) *Client {
	c := &Client{log: log}

	c.rc = resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryWait).
		SetHeader("Accept", "application/json").
		SetLogger(log).
		AddRetryCondition(func(_ *resty.Response, err error) bool {
			return IsTimeout(err)
		}).
		OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			if resp.StatusCode() == http.StatusUnauthorized && c.OnUnauthorized != nil {
				c.OnUnauthorized(resp.Request.Context())
			}
			return nil
		})

	return c
}

// IsTimeout reports whether err comes from a request that ran out of time.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func (c *Client) request(ctx context.Context) *resty.Request {
	r := c.rc.R().SetContext(ctx)
	if id := middleware.ContextRequestID(ctx); id != "" {
		r.SetHeader(middleware.RequestIDHeader, id)
	}
	if clm, err := claims.Get(ctx); err == nil && clm.Token != "" {
		r.SetAuthToken(clm.Token)
	}
	return r
}

// do executes r and classifies the outcome. It returns the raw body of
// successful responses.
func (c *Client) do(r *resty.Request, method, url string) ([]byte, error) {
	resp, err := r.Execute(method, url)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"method":  method,
			"url":     url,
			"timeout": IsTimeout(err),
		}).Warn("backend request failed")
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}

	if !resp.IsError() {
		return resp.Body(), nil
	}

	c.log.WithFields(logrus.Fields{
		"method":     method,
		"url":        resp.Request.URL,
		"statuscode": resp.StatusCode(),
	}).Warn("backend request rejected")

	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusForbidden:
		return nil, ErrForbidden
	case http.StatusNotFound:
		return nil, ErrNotFound
	}
	return nil, &StatusError{
		Method: method,
		URL:    resp.Request.URL,
		Status: resp.StatusCode(),
		Body:   string(resp.Body()),
	}
}

// Course returns the course header, which may or may not carry its modules.
func (c *Client) Course(ctx context.Context, id string) ([]byte, error) {
	r := c.request(ctx).SetPathParam("id", id)
	return c.do(r, http.MethodGet, "/api/courses/{id}")
}

// Lessons returns the flat lesson listing of a course.
func (c *Client) Lessons(ctx context.Context, courseID string) ([]byte, error) {
	r := c.request(ctx).SetPathParam("id", courseID)
	return c.do(r, http.MethodGet, "/course-videos/course/{id}/lessons")
}

func (c *Client) CreateCourse(ctx context.Context, p project.Payload) ([]byte, error) {
	r := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(p)
	return c.do(r, http.MethodPost, "/api/courses")
}

func (c *Client) UpdateCourse(ctx context.Context, id string, p project.Payload) ([]byte, error) {
	r := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("id", id).
		SetBody(p)
	return c.do(r, http.MethodPut, "/api/courses/{id}")
}

// User is the account a bearer token belongs to.
type User struct {
	ID   string
	Role string
}

type rawUser struct {
	ID   normalize.FlexString `json:"id"`
	Role normalize.FlexString `json:"role"`
	Data *rawUser             `json:"data"`
}

// CurrentUser asks the backend who owns the bearer token in ctx. The answer
// may come wrapped in a {"data": ...} envelope.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	raw, err := c.do(c.request(ctx), http.MethodGet, "/api/auth/me")
	if err != nil {
		return User{}, err
	}

	var u rawUser
	if err := json.Unmarshal(raw, &u); err != nil {
		return User{}, fmt.Errorf("decoding current user: %w", err)
	}
	if u.ID.String() == "" && u.Data != nil {
		u = *u.Data
	}
	if u.ID.String() == "" {
		return User{}, errors.New("current user without id")
	}

	return User{ID: u.ID.String(), Role: u.Role.String()}, nil
}

func (c *Client) Categories(ctx context.Context) ([]byte, error) {
	return c.do(c.request(ctx), http.MethodGet, "/api/categories")
}

func (c *Client) Subcategories(ctx context.Context, categoryID string) ([]byte, error) {
	r := c.request(ctx).SetPathParam("id", categoryID)
	return c.do(r, http.MethodGet, "/api/categories/{id}/subcategories")
}
