package config

import "time"

type Config struct {
	Web     Web
	Backend Backend
	Session Session
	Drafts  Drafts
	Rate    Rate
	Cors    Cors
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:75s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

// Backend points at the course REST API.
type Backend struct {
	URL       string        `conf:"default:http://localhost:8080"`
	Timeout   time.Duration `conf:"default:30s"`
	Retries   int           `conf:"default:1"`
	RetryWait time.Duration `conf:"default:200ms"`
}

type Session struct {
	Lifetime   time.Duration `conf:"default:24h"`
	CookieName string        `conf:"default:author_session"`
	Secure     bool          `conf:"default:false"`
}

type Drafts struct {
	TTL       time.Duration `conf:"default:2h"`
	UndoDepth int           `conf:"default:50"`
}

type Rate struct {
	Burst  int           `conf:"default:20"`
	Every  time.Duration `conf:"default:100ms"`
	Expiry time.Duration `conf:"default:10m"`
}

type Cors struct {
	Origin string
}
