package project

import (
	"io"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/course-authoring/core/draft"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func videoLesson(url string, seconds int) draft.Lesson {
	return draft.Lesson{
		ID:       draft.Transient(url),
		Title:    url,
		Type:     draft.Video,
		IsActive: true,
		Video:    &draft.VideoInfo{URL: url, DurationSeconds: seconds},
	}
}

func textLesson(content string) draft.Lesson {
	return draft.Lesson{
		ID:       draft.Transient(content),
		Title:    content,
		Type:     draft.Text,
		IsActive: true,
		Content:  &content,
	}
}

func sampleDraft() draft.Draft {
	return draft.Draft{
		DraftID:       "d1",
		Title:         "Go desde cero",
		Description:   "desc",
		CategoryID:    "3",
		SubcategoryID: "7",
		InstructorID:  "42",
		Price:         19.9,
		IsActive:      true,
		Modules: []draft.Module{
			{
				ID:    draft.Persisted("1"),
				Title: "Intro",
				Lessons: []draft.Lesson{
					videoLesson("https://youtu.be/abc123XYZ9", 1800),
					textLesson("read me"),
					videoLesson("", 600),
				},
			},
			{
				ID:    draft.Persisted("2"),
				Title: "Avanzado",
				Lessons: []draft.Lesson{
					videoLesson("https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=1", 2400),
				},
			},
		},
	}
}

func discard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestProject(t *testing.T) {
	got := Project(sampleDraft(), discard())

	want := Payload{
		Title:         "Go desde cero",
		Description:   "desc",
		InstructorID:  "42",
		CategoryID:    "3",
		SubcategoryID: "7",
		YoutubeURLs: []string{
			"https://www.youtube.com/watch?v=abc123XYZ9",
			"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		Price:          19.9,
		IsPremium:      true,
		IsActive:       true,
		EstimatedHours: 2,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Project() mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectDeterministic(t *testing.T) {
	d := sampleDraft()
	first := Project(d, discard())
	second := Project(d, discard())

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Project() is not deterministic (-first +second):\n%s", diff)
	}
}

func TestProjectWithoutVideos(t *testing.T) {
	d := draft.Draft{
		Title: "Sin videos",
		Modules: []draft.Module{
			{ID: draft.Transient("m"), Lessons: []draft.Lesson{textLesson("a"), videoLesson("", 3600)}},
			{ID: draft.Transient("n"), Lessons: []draft.Lesson{}},
		},
	}

	got := Project(d, discard())
	if got.EstimatedHours != 1 {
		t.Errorf("EstimatedHours = %d, want 1", got.EstimatedHours)
	}
	if got.YoutubeURLs == nil || len(got.YoutubeURLs) != 0 {
		t.Errorf("YoutubeURLs = %#v, want empty non nil slice", got.YoutubeURLs)
	}
	if got.IsPremium {
		t.Error("IsPremium = true for a free course")
	}
}

func TestProjectMalformedURL(t *testing.T) {
	log, hook := test.NewNullLogger()

	d := draft.Draft{
		DraftID: "d1",
		Modules: []draft.Module{{
			ID:      draft.Transient("m"),
			Lessons: []draft.Lesson{videoLesson("https://vimeo.com/1234", 60), videoLesson("https://youtu.be/ok", 60)},
		}},
	}

	got := Project(d, log)

	want := []string{"https://vimeo.com/1234", "https://www.youtube.com/watch?v=ok"}
	if diff := cmp.Diff(want, got.YoutubeURLs); diff != "" {
		t.Errorf("YoutubeURLs mismatch (-want +got):\n%s", diff)
	}

	if len(hook.Entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(hook.Entries))
	}
	e := hook.LastEntry()
	if e.Level != logrus.WarnLevel {
		t.Errorf("logged at %v, want warn", e.Level)
	}
	if e.Data["url"] != "https://vimeo.com/1234" {
		t.Errorf("logged url = %v", e.Data["url"])
	}
}

func TestEstimatedHours(t *testing.T) {
	tests := []struct {
		seconds int
		want    int
	}{
		{seconds: 0, want: 1},
		{seconds: 1, want: 1},
		{seconds: 3600, want: 1},
		{seconds: 3601, want: 2},
		{seconds: 7200, want: 2},
		{seconds: 10 * 3600, want: 10},
	}
	for _, tt := range tests {
		if got := EstimatedHours(tt.seconds); got != tt.want {
			t.Errorf("EstimatedHours(%d) = %d, want %d", tt.seconds, got, tt.want)
		}
	}
}

func TestProjectHugeDurations(t *testing.T) {
	d := draft.Draft{
		DraftID: "d1",
		Modules: []draft.Module{{
			ID: draft.Transient("m"),
			Lessons: []draft.Lesson{
				videoLesson("https://youtu.be/a1", math.MaxInt/2+1),
				videoLesson("https://youtu.be/b2", math.MaxInt/2+1),
			},
		}},
	}

	got := Project(d, discard())
	if want := EstimatedHours(math.MaxInt); got.EstimatedHours != want {
		t.Errorf("EstimatedHours = %d, want %d", got.EstimatedHours, want)
	}
	if got.EstimatedHours <= 1 {
		t.Errorf("EstimatedHours = %d, the total wrapped around", got.EstimatedHours)
	}
}

func TestAddSeconds(t *testing.T) {
	tests := []struct {
		total, d, want int
	}{
		{total: 0, d: 60, want: 60},
		{total: 60, d: -5, want: 60},
		{total: 60, d: 0, want: 60},
		{total: math.MaxInt - 1, d: 1, want: math.MaxInt},
		{total: math.MaxInt - 1, d: 2, want: math.MaxInt},
		{total: math.MaxInt, d: math.MaxInt, want: math.MaxInt},
	}
	for _, tt := range tests {
		if got := addSeconds(tt.total, tt.d); got != tt.want {
			t.Errorf("addSeconds(%d, %d) = %d, want %d", tt.total, tt.d, got, tt.want)
		}
	}
}
