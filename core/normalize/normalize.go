// Package normalize turns the shapes the course backend returns for course
// content into the module/lesson tree used by drafts. Nothing in here
// returns an error: bad records degrade to zero values and are kept.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/irsalhamdi/course-authoring/core/draft"
	"github.com/irsalhamdi/course-authoring/youtube"
)

const (
	DefaultModuleKey   = "default"
	DefaultModuleTitle = "Contenido General"
)

// Input is one of the content shapes the backend produces: FlatVideoList,
// NestedCourse or URLList.
type Input interface {
	modules() []draft.Module
}

// FlatVideoList is a list of lessons, each naming the module it belongs to.
type FlatVideoList []RawVideo

// NestedCourse is course.modules[].lessons[].
type NestedCourse []RawModule

// URLList is a course that only carries the youtubeUrls it was saved with.
type URLList []string

// Modules returns the module tree for in. Modules are sorted by orderIndex,
// and so are the lessons inside each module; both sorts are stable.
func Modules(in Input) []draft.Module {
	if in == nil {
		return []draft.Module{}
	}
	mods := in.modules()
	if mods == nil {
		mods = []draft.Module{}
	}

	sort.SliceStable(mods, func(i, j int) bool {
		return mods[i].OrderIndex < mods[j].OrderIndex
	})
	for k := range mods {
		ls := mods[k].Lessons
		sort.SliceStable(ls, func(i, j int) bool {
			return ls[i].OrderIndex < ls[j].OrderIndex
		})
	}
	return mods
}

func (l FlatVideoList) modules() []draft.Module {
	index := make(map[string]int)
	var (
		mods   []draft.Module
		titled []bool
	)

	for i, v := range l {
		key := v.ModuleID.String()
		if key == "" {
			key = DefaultModuleKey
		}

		k, ok := index[key]
		if !ok {
			k = len(mods)
			index[key] = k
			mods = append(mods, groupModule(key, k))
			titled = append(titled, key == DefaultModuleKey)
		}

		m := &mods[k]
		if t := v.ModuleTitle.String(); !titled[k] && t != "" {
			m.Title = t
			titled[k] = true
		}
		if m.Description == "" {
			m.Description = v.ModuleDescription.String()
		}
		if m.OrderIndex == 0 {
			m.OrderIndex = v.ModuleOrderIndex.Or(0)
		}

		m.Lessons = append(m.Lessons, lesson(v, fmt.Sprintf("raw-%d", i)))
	}

	for k := range mods {
		if mods[k].OrderIndex == 0 {
			mods[k].OrderIndex = 1
		}
	}
	return mods
}

// groupModule starts the module for a moduleId seen for the first time. Its
// OrderIndex stays 0 until a lesson of the group provides one.
func groupModule(key string, position int) draft.Module {
	m := draft.Module{Lessons: []draft.Lesson{}}
	if key == DefaultModuleKey {
		m.ID = draft.Transient(DefaultModuleKey)
		m.Title = DefaultModuleTitle
		return m
	}
	m.ID = draft.Persisted(key)
	m.Title = fmt.Sprintf(draft.DefaultModuleTitle, position+1)
	return m
}

func (n NestedCourse) modules() []draft.Module {
	mods := make([]draft.Module, 0, len(n))
	for i, rm := range n {
		m := draft.Module{
			ID:          id(rm.ID, fmt.Sprintf("raw-m%d", i)),
			Title:       rm.Title.String(),
			Description: rm.Description.String(),
			OrderIndex:  rm.OrderIndex.Or(1),
			Lessons:     make([]draft.Lesson, 0, len(rm.Lessons)),
		}
		for j, rl := range rm.Lessons {
			m.Lessons = append(m.Lessons, lesson(rl, fmt.Sprintf("raw-m%d-l%d", i, j)))
		}
		mods = append(mods, m)
	}
	return mods
}

func (u URLList) modules() []draft.Module {
	if len(u) == 0 {
		return []draft.Module{}
	}
	m := draft.Module{
		ID:         draft.Transient(DefaultModuleKey),
		Title:      DefaultModuleTitle,
		OrderIndex: 1,
		Lessons:    make([]draft.Lesson, 0, len(u)),
	}
	for i, raw := range u {
		v := RawVideo{
			Title:      FlexString{Value: fmt.Sprintf(draft.DefaultLessonTitle, i+1), Valid: true},
			YoutubeURL: FlexString{Value: raw, Valid: true},
			OrderIndex: FlexInt{Value: i + 1, Valid: true},
		}
		m.Lessons = append(m.Lessons, lesson(v, fmt.Sprintf("raw-%d", i)))
	}
	return []draft.Module{m}
}

func id(raw FlexString, fallback string) draft.ID {
	if s := raw.String(); s != "" {
		return draft.Persisted(s)
	}
	return draft.Transient(fallback)
}

func lessonType(v RawVideo) draft.LessonType {
	switch t := draft.LessonType(strings.ToLower(v.Type.String())); t {
	case draft.Video, draft.Text, draft.Quiz, draft.Document:
		return t
	}
	if v.YoutubeURL.String() == "" && v.VideoURL.String() == "" && v.YoutubeVideoID.String() == "" && v.Content.Valid {
		return draft.Text
	}
	return draft.Video
}

func lesson(v RawVideo, fallbackID string) draft.Lesson {
	l := draft.Lesson{
		ID:          id(v.ID, fallbackID),
		Title:       v.Title.String(),
		Description: v.Description.String(),
		Type:        lessonType(v),
		OrderIndex:  v.OrderIndex.Or(1),
		IsActive:    v.IsActive.Or(true),
	}

	switch l.Type {
	case draft.Video:
		l.Video = videoInfo(v)
	case draft.Text:
		c := v.Content.Value
		l.Content = &c
	}
	return l
}

// videoInfo derives the youtube id and thumbnail from whatever the record
// carries: a youtube url, a generic video url or just the id.
func videoInfo(v RawVideo) *draft.VideoInfo {
	info := &draft.VideoInfo{
		URL:             v.YoutubeURL.String(),
		YouTubeID:       v.YoutubeVideoID.String(),
		DurationSeconds: v.DurationSeconds.Value,
	}
	if info.URL == "" {
		info.URL = v.VideoURL.String()
	}
	if info.URL == "" && info.YouTubeID != "" {
		info.URL = youtube.WatchURL(info.YouTubeID)
	}
	if info.YouTubeID == "" {
		info.YouTubeID, _ = youtube.ExtractID(info.URL)
	}
	if info.DurationSeconds < 0 {
		info.DurationSeconds = 0
	}
	info.ThumbnailURL = youtube.Thumbnail(info.YouTubeID)
	return info
}

// Decode detects the shape of a backend response. A bare array is a flat
// lesson list; an object (possibly wrapped in a {"data": ...} envelope) is a
// course whose content sits under modules, videos, lessons or youtubeUrls.
// Anything unreadable is an empty list.
func Decode(raw []byte) Input {
	_, in := DecodeCourse(raw)
	return in
}

// DecodeCourse is Decode that also returns the course header, when the
// response carried one.
func DecodeCourse(raw []byte) (RawCourse, Input) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return RawCourse{}, FlatVideoList{}
	}

	if isArray(raw) {
		return RawCourse{}, FlatVideoList(decodeVideos(raw))
	}

	var c RawCourse
	if !isObject(raw) || json.Unmarshal(raw, &c) != nil {
		return RawCourse{}, FlatVideoList{}
	}

	switch {
	case isArray(c.Modules):
		return c, NestedCourse(decodeModules(c.Modules))
	case isArray(c.Videos):
		return c, FlatVideoList(decodeVideos(c.Videos))
	case isArray(c.Lessons):
		return c, FlatVideoList(decodeVideos(c.Lessons))
	case isArray(c.YoutubeURLs):
		return c, URLList(decodeStrings(c.YoutubeURLs))
	case isObject(c.Data) || isArray(c.Data):
		return DecodeCourse(c.Data)
	}
	return c, FlatVideoList{}
}

// Draft builds an editable draft from a course header and its modules. A
// course without content gets one empty module, since a draft under edition
// always has at least one.
func Draft(c RawCourse, modules []draft.Module) draft.Draft {
	d := draft.Draft{
		CourseID:         c.ID.String(),
		Title:            c.Title.String(),
		Description:      c.Description.Value,
		ShortDescription: c.ShortDescription.Value,
		Price:            c.Price.Value,
		CategoryID:       c.CategoryID.String(),
		SubcategoryID:    c.SubcategoryID.String(),
		InstructorID:     c.InstructorID.String(),
		ThumbnailURL:     c.ThumbnailURL.String(),
		IsPublished:      c.IsPublished.Or(false),
		IsActive:         c.IsActive.Or(true),
		Modules:          modules,
	}
	if d.Price < 0 {
		d.Price = 0
	}
	if len(d.Modules) == 0 {
		d.Modules = []draft.Module{draft.NewModule(1)}
	}
	return d
}
