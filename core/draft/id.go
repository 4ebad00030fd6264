package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/irsalhamdi/course-authoring/random"
)

type idKind string

const (
	kindTransient idKind = "transient"
	kindPersisted idKind = "persisted"
)

// ID identifies a module or lesson. A transient ID only exists on this side
// of the wire; a persisted ID was assigned by the course backend. The two are
// never interchangeable.
type ID struct {
	kind  idKind
	value string
}

// nowFunc is replaced in tests.
var nowFunc = time.Now

func Transient(localID string) ID { return ID{kind: kindTransient, value: localID} }

func Persisted(id string) ID { return ID{kind: kindPersisted, value: id} }

// NewTransientID returns a timestamp based client id. The random suffix keeps
// ids created within the same millisecond distinct.
func NewTransientID() ID {
	ms := strconv.FormatInt(nowFunc().UnixMilli(), 10)
	return Transient(ms + "-" + random.String(4))
}

func (id ID) Equal(other ID) bool { return id == other }

func (id ID) IsPersisted() bool { return id.kind == kindPersisted }

// ServerID returns the backend id. It reports false for transient ids so a
// client only key can never end up in a request.
func (id ID) ServerID() (string, bool) {
	if id.kind != kindPersisted {
		return "", false
	}
	return id.value, true
}

// LocalID returns the client key of a transient id.
func (id ID) LocalID() (string, bool) {
	if id.kind != kindTransient {
		return "", false
	}
	return id.value, true
}

func (id ID) String() string {
	if id.kind == "" {
		return ""
	}
	return string(id.kind) + ":" + id.value
}

type idJSON struct {
	Kind    idKind `json:"kind"`
	LocalID string `json:"localId,omitempty"`
	ID      string `json:"id,omitempty"`
}

func (id ID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case kindTransient:
		return json.Marshal(idJSON{Kind: kindTransient, LocalID: id.value})
	case kindPersisted:
		return json.Marshal(idJSON{Kind: kindPersisted, ID: id.value})
	}
	return []byte("null"), nil
}

func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ID{}
		return nil
	}

	var v idJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("decoding id: %w", err)
	}

	switch v.Kind {
	case kindTransient:
		if v.LocalID == "" {
			return errors.New("transient id without localId")
		}
		*id = Transient(v.LocalID)
	case kindPersisted:
		if v.ID == "" {
			return errors.New("persisted id without id")
		}
		*id = Persisted(v.ID)
	default:
		return fmt.Errorf("unknown id kind %q", v.Kind)
	}
	return nil
}
