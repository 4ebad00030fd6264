package project

import (
	"math"

	"github.com/irsalhamdi/course-authoring/core/draft"
	"github.com/irsalhamdi/course-authoring/youtube"
	"github.com/sirupsen/logrus"
)

// Payload is the body of POST /api/courses and PUT /api/courses/{id}.
type Payload struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"shortDescription"`
	InstructorID     string   `json:"instructorId"`
	CategoryID       string   `json:"categoryId"`
	SubcategoryID    string   `json:"subcategoryId"`
	YoutubeURLs      []string `json:"youtubeUrls"`
	ThumbnailURL     string   `json:"thumbnailUrl"`
	Price            float64  `json:"price"`
	IsPremium        bool     `json:"isPremium"`
	IsPublished      bool     `json:"isPublished"`
	IsActive         bool     `json:"isActive"`
	EstimatedHours   int      `json:"estimatedHours"`
}

// Project flattens d into the write payload. It does not validate: callers
// check the draft before projecting it. Video urls that are not recognised as
// youtube links are sent as they are and logged.
func Project(d draft.Draft, log logrus.FieldLogger) Payload {
	p := Payload{
		Title:            d.Title,
		Description:      d.Description,
		ShortDescription: d.ShortDescription,
		InstructorID:     d.InstructorID,
		CategoryID:       d.CategoryID,
		SubcategoryID:    d.SubcategoryID,
		YoutubeURLs:      make([]string, 0),
		ThumbnailURL:     d.ThumbnailURL,
		Price:            d.Price,
		IsPremium:        d.IsPremium(),
		IsPublished:      d.IsPublished,
		IsActive:         d.IsActive,
	}

	var seconds int
	for mi, m := range d.Modules {
		for li, l := range m.Lessons {
			if !l.HasVideo() {
				continue
			}

			url, ok := youtube.Canonical(l.Video.URL)
			if !ok && log != nil {
				log.WithFields(logrus.Fields{
					"draft_id": d.DraftID,
					"module":   mi,
					"lesson":   li,
					"url":      l.Video.URL,
				}).Warn("video url is not a youtube link, sending it unchanged")
			}
			p.YoutubeURLs = append(p.YoutubeURLs, url)

			seconds = addSeconds(seconds, l.Video.DurationSeconds)
		}
	}

	p.EstimatedHours = EstimatedHours(seconds)
	return p
}

// addSeconds adds a positive duration to total, saturating at math.MaxInt.
func addSeconds(total, d int) int {
	if d <= 0 {
		return total
	}
	if total > math.MaxInt-d {
		return math.MaxInt
	}
	return total + d
}

// EstimatedHours is ceil(minutes / 60), never less than one hour.
func EstimatedHours(seconds int) int {
	minutes := float64(seconds) / 60
	h := int(math.Ceil(minutes / 60))
	if h < 1 {
		return 1
	}
	return h
}
