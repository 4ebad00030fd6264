package draft

import (
	"encoding/json"
	"fmt"
)

type LessonType string

const (
	Video    LessonType = "video"
	Text     LessonType = "text"
	Quiz     LessonType = "quiz"
	Document LessonType = "document"
)

func (t LessonType) Valid() bool {
	switch t {
	case Video, Text, Quiz, Document:
		return true
	}
	return false
}

const (
	DefaultModuleTitle = "Módulo %d"
	DefaultLessonTitle = "Lección %d"
)

// Draft is a course being authored. It lives in memory only and is thrown
// away once it is submitted or abandoned.
type Draft struct {
	DraftID          string   `json:"draftId"`
	CourseID         string   `json:"courseId,omitempty"`
	Title            string   `json:"title" validate:"required,max=100"`
	Description      string   `json:"description" validate:"required,min=200"`
	ShortDescription string   `json:"shortDescription"`
	Price            float64  `json:"price" validate:"gte=0"`
	CategoryID       string   `json:"categoryId" validate:"required"`
	SubcategoryID    string   `json:"subcategoryId" validate:"required"`
	InstructorID     string   `json:"instructorId"`
	ThumbnailURL     string   `json:"thumbnailUrl"`
	IsPublished      bool     `json:"isPublished"`
	IsActive         bool     `json:"isActive"`
	Modules          []Module `json:"modules" validate:"min=1"`
}

type Module struct {
	ID          ID       `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	OrderIndex  int      `json:"orderIndex"`
	Lessons     []Lesson `json:"lessons"`
}

// Lesson is a variant over LessonType: only video lessons carry Video and
// only text lessons carry Content.
type Lesson struct {
	ID          ID         `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        LessonType `json:"type"`
	OrderIndex  int        `json:"orderIndex"`
	IsActive    bool       `json:"isActive"`
	Video       *VideoInfo `json:"video,omitempty"`
	Content     *string    `json:"content,omitempty"`
}

type VideoInfo struct {
	URL             string `json:"url"`
	YouTubeID       string `json:"youtubeVideoId,omitempty"`
	DurationSeconds int    `json:"duration"`
	ThumbnailURL    string `json:"thumbnailUrl,omitempty"`
}

func (d Draft) IsPremium() bool { return d.Price > 0 }

func (d Draft) CourseType() string {
	if d.IsPremium() {
		return "premium"
	}
	return "free"
}

// MarshalJSON adds the derived courseType to the draft's fields.
func (d Draft) MarshalJSON() ([]byte, error) {
	type fields Draft
	return json.Marshal(struct {
		fields
		CourseType string `json:"courseType"`
	}{fields(d), d.CourseType()})
}

func (d Draft) HasModule(m int) bool { return m >= 0 && m < len(d.Modules) }

func (d Draft) HasLesson(m, l int) bool {
	return d.HasModule(m) && l >= 0 && l < len(d.Modules[m].Lessons)
}

// HasVideo reports whether the lesson carries a non empty video url.
func (l Lesson) HasVideo() bool {
	return l.Type == Video && l.Video != nil && l.Video.URL != ""
}

// New returns the draft shown for a brand new course: one module holding one
// video lesson.
func New() Draft {
	d := Draft{IsActive: true}
	d.Modules = []Module{NewModule(1)}
	d.Modules[0].Lessons = []Lesson{NewLesson(Video, 1)}
	return d
}

func NewModule(n int) Module {
	return Module{
		ID:         NewTransientID(),
		Title:      fmt.Sprintf(DefaultModuleTitle, n),
		OrderIndex: n,
		Lessons:    []Lesson{},
	}
}

// NewLesson returns a lesson with the default fields of its type.
func NewLesson(t LessonType, n int) Lesson {
	l := Lesson{
		ID:         NewTransientID(),
		Title:      fmt.Sprintf(DefaultLessonTitle, n),
		Type:       t,
		OrderIndex: n,
		IsActive:   true,
	}
	resetVariant(&l)
	return l
}

func resetVariant(l *Lesson) {
	l.Video = nil
	l.Content = nil
	switch l.Type {
	case Video:
		l.Video = &VideoInfo{}
	case Text:
		c := ""
		l.Content = &c
	}
}

// Clone returns a deep copy, so that operations on the copy never reach the
// receiver's modules, lessons or variant payloads.
func (d Draft) Clone() Draft {
	out := d
	if d.Modules == nil {
		return out
	}
	out.Modules = make([]Module, len(d.Modules))
	for i, m := range d.Modules {
		out.Modules[i] = m.clone()
	}
	return out
}

func (m Module) clone() Module {
	out := m
	if m.Lessons == nil {
		return out
	}
	out.Lessons = make([]Lesson, len(m.Lessons))
	for i, l := range m.Lessons {
		out.Lessons[i] = l.clone()
	}
	return out
}

func (l Lesson) clone() Lesson {
	out := l
	if l.Video != nil {
		v := *l.Video
		out.Video = &v
	}
	if l.Content != nil {
		c := *l.Content
		out.Content = &c
	}
	return out
}
