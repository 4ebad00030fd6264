// Package course loads existing courses into drafts and writes drafts back
// to the course backend.
package course

import (
	"context"

	"github.com/irsalhamdi/course-authoring/core/project"
)

// Backend is the part of the course REST API used here. backend.Client
// implements it.
type Backend interface {
	Course(ctx context.Context, id string) ([]byte, error)
	Lessons(ctx context.Context, courseID string) ([]byte, error)
	CreateCourse(ctx context.Context, p project.Payload) ([]byte, error)
	UpdateCourse(ctx context.Context, id string, p project.Payload) ([]byte, error)
	Categories(ctx context.Context) ([]byte, error)
	Subcategories(ctx context.Context, categoryID string) ([]byte, error)
}

// Submitted is the answer to a successful submission.
type Submitted struct {
	CourseID string `json:"courseId"`
	Created  bool   `json:"created"`
}
