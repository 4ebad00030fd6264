package normalize

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// The course backend is not consistent about JSON types: ids come as numbers
// or strings, counters sometimes as strings, and any field may be null. The
// Flex types below accept all of those and never fail to decode, so one bad
// field cannot take a whole response down.

type FlexString struct {
	Value string
	Valid bool
}

func (s *FlexString) UnmarshalJSON(b []byte) error {
	*s = FlexString{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}

	switch b[0] {
	case '"':
		var v string
		if json.Unmarshal(b, &v) == nil {
			*s = FlexString{Value: v, Valid: true}
		}
	case '{', '[':
	default:
		*s = FlexString{Value: number(string(b)), Valid: true}
	}
	return nil
}

// number renders a JSON number in one form, so 1, 1.0 and 1e0 are the same
// id.
func number(raw string) string {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return raw
}

func (s FlexString) String() string { return strings.TrimSpace(s.Value) }

type FlexInt struct {
	Value int
	Valid bool
}

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	*n = FlexInt{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}

	s := string(b)
	if b[0] == '"' {
		if json.Unmarshal(b, &s) != nil {
			return nil
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f > math.MaxInt32 || f < math.MinInt32 {
		return nil
	}
	*n = FlexInt{Value: int(f), Valid: true}
	return nil
}

// Or returns the value, or def when it is absent or zero.
func (n FlexInt) Or(def int) int {
	if !n.Valid || n.Value == 0 {
		return def
	}
	return n.Value
}

type FlexFloat struct {
	Value float64
	Valid bool
}

func (n *FlexFloat) UnmarshalJSON(b []byte) error {
	*n = FlexFloat{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}

	s := string(b)
	if b[0] == '"' {
		if json.Unmarshal(b, &s) != nil {
			return nil
		}
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		*n = FlexFloat{Value: f, Valid: true}
	}
	return nil
}

type FlexBool struct {
	Value bool
	Valid bool
}

func (v *FlexBool) UnmarshalJSON(b []byte) error {
	*v = FlexBool{}
	switch strings.Trim(string(bytes.TrimSpace(b)), `"`) {
	case "true", "1":
		*v = FlexBool{Value: true, Valid: true}
	case "false", "0":
		*v = FlexBool{Value: false, Valid: true}
	}
	return nil
}

func (v FlexBool) Or(def bool) bool {
	if !v.Valid {
		return def
	}
	return v.Value
}

// RawVideo is one entry of the flat lesson listing, also used for the lessons
// nested inside a module.
type RawVideo struct {
	ID                FlexString `json:"id"`
	Title             FlexString `json:"title"`
	Description       FlexString `json:"description"`
	ModuleID          FlexString `json:"moduleId"`
	ModuleTitle       FlexString `json:"moduleTitle"`
	ModuleDescription FlexString `json:"moduleDescription"`
	ModuleOrderIndex  FlexInt    `json:"moduleOrderIndex"`
	OrderIndex        FlexInt    `json:"orderIndex"`
	Type              FlexString `json:"type"`
	YoutubeURL        FlexString `json:"youtubeUrl"`
	YoutubeVideoID    FlexString `json:"youtubeVideoId"`
	VideoURL          FlexString `json:"videoUrl"`
	DurationSeconds   FlexInt    `json:"durationSeconds"`
	Content           FlexString `json:"content"`
	IsActive          FlexBool   `json:"isActive"`
}

type RawModule struct {
	ID          FlexString `json:"id"`
	Title       FlexString `json:"title"`
	Description FlexString `json:"description"`
	OrderIndex  FlexInt    `json:"orderIndex"`
	Lessons     []RawVideo `json:"-"`
}

func (m *RawModule) UnmarshalJSON(b []byte) error {
	var v struct {
		ID          FlexString      `json:"id"`
		Title       FlexString      `json:"title"`
		Description FlexString      `json:"description"`
		OrderIndex  FlexInt         `json:"orderIndex"`
		Lessons     json.RawMessage `json:"lessons"`
	}
	*m = RawModule{}
	if json.Unmarshal(b, &v) != nil {
		return nil
	}
	*m = RawModule{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		OrderIndex:  v.OrderIndex,
		Lessons:     decodeVideos(v.Lessons),
	}
	return nil
}

// RawCourse is the course header returned by GET /api/courses/{id}. Content
// may come under modules, videos, lessons or youtubeUrls, or not at all.
type RawCourse struct {
	ID               FlexString      `json:"id"`
	Title            FlexString      `json:"title"`
	Description      FlexString      `json:"description"`
	ShortDescription FlexString      `json:"shortDescription"`
	Price            FlexFloat       `json:"price"`
	CategoryID       FlexString      `json:"categoryId"`
	SubcategoryID    FlexString      `json:"subcategoryId"`
	InstructorID     FlexString      `json:"instructorId"`
	ThumbnailURL     FlexString      `json:"thumbnailUrl"`
	IsPublished      FlexBool        `json:"isPublished"`
	IsActive         FlexBool        `json:"isActive"`
	Modules          json.RawMessage `json:"modules"`
	Videos           json.RawMessage `json:"videos"`
	Lessons          json.RawMessage `json:"lessons"`
	YoutubeURLs      json.RawMessage `json:"youtubeUrls"`
	Data             json.RawMessage `json:"data"`
}

func isArray(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '['
}

func isObject(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}

// decodeVideos decodes each element on its own so that an entry of the wrong
// shape becomes an empty RawVideo instead of failing the list.
func decodeVideos(b json.RawMessage) []RawVideo {
	var items []json.RawMessage
	if json.Unmarshal(b, &items) != nil {
		return nil
	}
	out := make([]RawVideo, len(items))
	for i, it := range items {
		_ = json.Unmarshal(it, &out[i])
	}
	return out
}

func decodeModules(b json.RawMessage) []RawModule {
	var items []json.RawMessage
	if json.Unmarshal(b, &items) != nil {
		return nil
	}
	out := make([]RawModule, len(items))
	for i, it := range items {
		_ = json.Unmarshal(it, &out[i])
	}
	return out
}

func decodeStrings(b json.RawMessage) []string {
	var items []FlexString
	if json.Unmarshal(b, &items) != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := it.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}
