package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/course-authoring/api"
	"github.com/irsalhamdi/course-authoring/api/web"
	"github.com/irsalhamdi/course-authoring/backend"
	"github.com/irsalhamdi/course-authoring/core/auth"
	"github.com/irsalhamdi/course-authoring/core/draft"
	"github.com/irsalhamdi/course-authoring/core/project"
	"github.com/irsalhamdi/course-authoring/rate"
	"github.com/sirupsen/logrus"
)

// tokenFor is the bearer token the mock backend issued to userID.
func tokenFor(userID string) string { return "token-" + userID }

type saved struct {
	Method  string
	Path    string
	Payload project.Payload
}

// mockBackend stands in for the course REST API. It accepts the tokens
// tokenFor hands out until they are revoked.
type mockBackend struct {
	mu      sync.Mutex
	revoked map[string]bool
	courses map[string]string
	lessons map[string]string
	saved   []saved
	// When block is set, course writes announce themselves on arrived and
	// wait until block is closed.
	block   chan struct{}
	arrived chan struct{}
}

func (m *mockBackend) handle() http.Handler {
	router := mux.NewRouter()

	user := func(r *http.Request) (string, bool) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		id := strings.TrimPrefix(token, "token-")
		if id == "" || id == token {
			return "", false
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		return id, !m.revoked[token]
	}

	auth := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if _, ok := user(r); !ok {
				web.Respond(context.Background(), w, map[string]string{"message": "invalid token"}, http.StatusUnauthorized)
				return
			}
			h(w, r)
		}
	}

	router.HandleFunc("/api/auth/me", auth(func(w http.ResponseWriter, r *http.Request) {
		id, _ := user(r)
		web.Respond(context.Background(), w, map[string]any{"data": map[string]string{"id": id, "role": "instructor"}}, http.StatusOK)
	})).Methods(http.MethodGet)

	raw := func(w http.ResponseWriter, body string, ok bool) {
		if !ok {
			web.Respond(context.Background(), w, map[string]string{"message": "not found"}, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}

	router.HandleFunc("/api/courses/{id}", auth(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		body, ok := m.courses[mux.Vars(r)["id"]]
		m.mu.Unlock()
		raw(w, body, ok)
	})).Methods(http.MethodGet)

	router.HandleFunc("/course-videos/course/{id}/lessons", auth(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		body, ok := m.lessons[mux.Vars(r)["id"]]
		m.mu.Unlock()
		raw(w, body, ok)
	})).Methods(http.MethodGet)

	write := func(w http.ResponseWriter, r *http.Request) {
		var p project.Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			web.Respond(context.Background(), w, nil, http.StatusBadRequest)
			return
		}

		m.mu.Lock()
		block, arrived := m.block, m.arrived
		m.mu.Unlock()
		if block != nil {
			arrived <- struct{}{}
			<-block
		}

		m.mu.Lock()
		m.saved = append(m.saved, saved{Method: r.Method, Path: r.URL.Path, Payload: p})
		m.mu.Unlock()

		id := mux.Vars(r)["id"]
		if id == "" {
			id = "99"
		}
		web.Respond(context.Background(), w, map[string]any{"success": true, "data": map[string]string{"id": id}}, http.StatusOK)
	}
	router.HandleFunc("/api/courses", auth(write)).Methods(http.MethodPost)
	router.HandleFunc("/api/courses/{id}", auth(write)).Methods(http.MethodPut)

	router.HandleFunc("/api/categories", auth(func(w http.ResponseWriter, r *http.Request) {
		raw(w, `[{"id": 1, "name": "Programación"}, {"id": 2, "name": "Diseño"}]`, true)
	})).Methods(http.MethodGet)

	router.HandleFunc("/api/categories/{id}/subcategories", auth(func(w http.ResponseWriter, r *http.Request) {
		raw(w, fmt.Sprintf(`[{"id": 10, "categoryId": %s, "name": "Go"}]`, mux.Vars(r)["id"]), true)
	})).Methods(http.MethodGet)

	return router
}

func (m *mockBackend) setCourse(id, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[id] = body
}

func (m *mockBackend) revoke(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[token] = true
}

func (m *mockBackend) setLessons(id, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lessons[id] = body
}

// hold makes course writes wait until release is called. arrived receives
// once per write that reached the backend.
func (m *mockBackend) hold() (arrived <-chan struct{}, release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.block = make(chan struct{})
	m.arrived = make(chan struct{}, 1)
	var once sync.Once
	block := m.block
	return m.arrived, func() { once.Do(func() { close(block) }) }
}

func (m *mockBackend) savedCourses() []saved {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]saved(nil), m.saved...)
}

type TestEnv struct {
	*httptest.Server
	Backend *mockBackend
	Drafts  *draft.Store
}

// NewTestEnv starts the api against a mock backend. The returned server's
// Client keeps cookies, so it holds one session.
func NewTestEnv(t *testing.T, lim *rate.Limiter) *TestEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	mb := &mockBackend{
		courses: make(map[string]string),
		lessons: make(map[string]string),
		revoked: make(map[string]bool),
	}
	bsrv := httptest.NewServer(mb.handle())
	t.Cleanup(bsrv.Close)

	session := scs.New()
	session.Lifetime = time.Hour

	client := backend.New(backend.Config{
		BaseURL:   bsrv.URL,
		Timeout:   5 * time.Second,
		Retries:   1,
		RetryWait: time.Millisecond,
	}, log)
	client.OnUnauthorized = auth.Logout(session, log)

	drafts := draft.NewStore(time.Hour, 20)

	srv := httptest.NewServer(api.APIMux(api.APIConfig{
		Log:     log,
		Session: session,
		Drafts:  drafts,
		Backend: client,
		Users:   client,
		Limiter: lim,
	}))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	srv.Client().Jar = jar

	return &TestEnv{Server: srv, Backend: mb, Drafts: drafts}
}

// NewClient returns a client with a session of its own.
func (env *TestEnv) NewClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar, Transport: env.Client().Transport}
}

// Login opens a session for userID with the token the backend issued it.
func Login(cl *http.Client, url string, userID string) error {
	code, err := LoginWith(cl, url, auth.SessionNew{Token: tokenFor(userID), UserID: userID})
	if err != nil {
		return err
	}
	if code != http.StatusCreated {
		return fmt.Errorf("can't login: status code %d", code)
	}
	return nil
}

func LoginWith(cl *http.Client, url string, body auth.SessionNew) (int, error) {
	return do(cl, http.MethodPost, url+"/auth/session", body, nil)
}

func Logout(cl *http.Client, url string) error {
	w, err := do(cl, http.MethodPost, url+"/auth/logout", nil, nil)
	if err != nil {
		return err
	}
	if w != http.StatusNoContent {
		return fmt.Errorf("can't logout: status code %d", w)
	}
	return nil
}

// do sends body as JSON, decodes the response into out when given, and
// returns the status code.
func do(cl *http.Client, method, url string, body any, out any) (int, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		rd = bytes.NewReader(b)
	}

	r, err := http.NewRequest(method, url, rd)
	if err != nil {
		return 0, err
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	w, err := cl.Do(r)
	if err != nil {
		return 0, err
	}
	defer w.Body.Close()

	if out != nil && w.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			return w.StatusCode, fmt.Errorf("decoding %s %s response: %w", method, url, err)
		}
	}
	return w.StatusCode, nil
}

// expect fails the test unless the request answers want.
func (env *TestEnv) expect(t *testing.T, cl *http.Client, method, path string, body any, want int, out any) {
	t.Helper()
	got, err := do(cl, method, env.URL+path, body, out)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("%s %s: status code %d, want %d", method, path, got, want)
	}
}
