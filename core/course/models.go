package course

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

type LessonType string

const (
	LessonVideo LessonType = "video"
	LessonQuiz  LessonType = "quiz"
	LessonPDF   LessonType = "pdf"
)

type Lesson struct {
	ID          string     `json:"id"`
	Title       string     `json:"title" validate:"required"`
	Duration    string     `json:"duration"` // free text, e.g. "10:05"
	Type        LessonType `json:"type" validate:"oneof=video quiz pdf"`
	IsCompleted bool       `json:"isCompleted"`
	IsLocked    bool       `json:"isLocked"`
	VideoURL    string     `json:"videoUrl,omitempty"`
	Content     string     `json:"content,omitempty"`
}

// Selectable reports whether the lesson may become the active lesson of the player.
func (l Lesson) Selectable() bool { return !l.IsLocked }

type Module struct {
	ID         string    `json:"id"`
	Title      string    `json:"title" validate:"required"`
	Lessons    []Lesson  `json:"lessons" validate:"dive"`
	UnlockDate null.Time `json:"unlockDate"` // drip content gate
}

func (m Module) IsUnlocked(now time.Time) bool {
	return !m.UnlockDate.Valid || !m.UnlockDate.Time.After(now)
}

type SecurityConfig struct {
	DRMEnabled     bool     `json:"drmEnabled"`
	AllowedDomains []string `json:"allowedDomains"`
	WatermarkText  string   `json:"watermarkText,omitempty"`
	GeoRestriction []string `json:"geoRestriction,omitempty"`
}

type Review struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId" validate:"required"`
	UserName string    `json:"userName"`
	Rating   int       `json:"rating" validate:"min=1,max=5"`
	Comment  string    `json:"comment"`
	Date     time.Time `json:"date"`
}

type Course struct {
	ID             string          `json:"id"`
	Title          string          `json:"title" validate:"required"`
	Instructor     string          `json:"instructor" validate:"required"`
	Students       int             `json:"students" validate:"gte=0"`
	Revenue        decimal.Decimal `json:"revenue"`
	Status         Status          `json:"status" validate:"oneof=draft published"`
	Thumbnail      string          `json:"thumbnail"`
	Modules        int             `json:"modules"` // dashboard count, not reconciled with Content
	Content        []Module        `json:"content" validate:"dive"`
	Description    string          `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price" validate:"gte=0"`
	NextRelease    string          `json:"nextRelease,omitempty"`
	SecurityConfig *SecurityConfig `json:"securityConfig,omitempty"`
	Reviews        []Review        `json:"reviews"`
}

func (c Course) IsFree() bool { return !c.Price.IsPositive() }

func (c Course) IsPublished() bool { return c.Status == StatusPublished }

// AverageRating returns 0 when there are no reviews.
func (c Course) AverageRating() float64 {
	if len(c.Reviews) == 0 {
		return 0
	}
	var sum int
	for _, r := range c.Reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(c.Reviews))
}

// VisibleModules returns the modules whose content is released at now.
func (c Course) VisibleModules(now time.Time) []Module {
	modules := make([]Module, 0, len(c.Content))
	for _, m := range c.Content {
		if m.IsUnlocked(now) {
			modules = append(modules, m)
		}
	}
	return modules
}

// FirstSelectableLesson returns the first unlocked lesson of the released modules.
func (c Course) FirstSelectableLesson(now time.Time) (Lesson, bool) {
	for _, m := range c.VisibleModules(now) {
		for _, l := range m.Lessons {
			if l.Selectable() {
				return l, true
			}
		}
	}
	return Lesson{}, false
}
