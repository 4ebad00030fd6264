package draft

import "github.com/irsalhamdi/course-authoring/youtube"

type CourseUp struct {
	Title            *string  `json:"title"`
	Description      *string  `json:"description"`
	ShortDescription *string  `json:"shortDescription"`
	Price            *float64 `json:"price" validate:"omitempty,gte=0"`
	CategoryID       *string  `json:"categoryId"`
	SubcategoryID    *string  `json:"subcategoryId"`
	InstructorID     *string  `json:"instructorId"`
	ThumbnailURL     *string  `json:"thumbnailUrl" validate:"omitempty,url"`
	IsPublished      *bool    `json:"isPublished"`
	IsActive         *bool    `json:"isActive"`
}

type ModuleUp struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type LessonUp struct {
	Title           *string     `json:"title"`
	Description     *string     `json:"description"`
	Type            *LessonType `json:"type" validate:"omitempty,oneof=video text quiz document"`
	IsActive        *bool       `json:"isActive"`
	VideoURL        *string     `json:"videoUrl"`
	DurationSeconds *int        `json:"duration" validate:"omitempty,gte=0,max=86400"`
	Content         *string     `json:"content"`
}

func UpdateCourse(d Draft, up CourseUp) Draft {
	out := d.Clone()
	if up.Title != nil {
		out.Title = *up.Title
	}
	if up.Description != nil {
		out.Description = *up.Description
	}
	if up.ShortDescription != nil {
		out.ShortDescription = *up.ShortDescription
	}
	if up.Price != nil {
		out.Price = *up.Price
	}
	if up.CategoryID != nil {
		// A new category invalidates the subcategory picked for the old one.
		if *up.CategoryID != out.CategoryID && up.SubcategoryID == nil {
			out.SubcategoryID = ""
		}
		out.CategoryID = *up.CategoryID
	}
	if up.SubcategoryID != nil {
		out.SubcategoryID = *up.SubcategoryID
	}
	if up.InstructorID != nil {
		out.InstructorID = *up.InstructorID
	}
	if up.ThumbnailURL != nil {
		out.ThumbnailURL = *up.ThumbnailURL
	}
	if up.IsPublished != nil {
		out.IsPublished = *up.IsPublished
	}
	if up.IsActive != nil {
		out.IsActive = *up.IsActive
	}
	return out
}

func UpdateModule(d Draft, m int, up ModuleUp) Draft {
	if !d.HasModule(m) {
		return d
	}
	out := d.Clone()
	mod := &out.Modules[m]
	if up.Title != nil {
		mod.Title = *up.Title
	}
	if up.Description != nil {
		mod.Description = *up.Description
	}
	return out
}

// UpdateLesson applies the changed fields. Switching the type drops the old
// variant payload, and a new video url refreshes the derived youtube id and
// thumbnail.
func UpdateLesson(d Draft, m, l int, up LessonUp) Draft {
	if !d.HasLesson(m, l) {
		return d
	}
	out := d.Clone()
	les := &out.Modules[m].Lessons[l]

	if up.Title != nil {
		les.Title = *up.Title
	}
	if up.Description != nil {
		les.Description = *up.Description
	}
	if up.IsActive != nil {
		les.IsActive = *up.IsActive
	}
	if up.Type != nil && up.Type.Valid() && *up.Type != les.Type {
		les.Type = *up.Type
		resetVariant(les)
	}

	switch les.Type {
	case Video:
		if les.Video == nil {
			les.Video = &VideoInfo{}
		}
		if up.VideoURL != nil {
			les.Video.URL = *up.VideoURL
			les.Video.YouTubeID, _ = youtube.ExtractID(*up.VideoURL)
			les.Video.ThumbnailURL = youtube.Thumbnail(les.Video.YouTubeID)
		}
		if up.DurationSeconds != nil {
			les.Video.DurationSeconds = *up.DurationSeconds
		}
	case Text:
		if up.Content != nil {
			c := *up.Content
			les.Content = &c
		}
	}
	return out
}
