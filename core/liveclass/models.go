package liveclass

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type ZoomDetails struct {
	MeetingID string `json:"meetingId"`
	JoinURL   string `json:"joinUrl"`
	StartURL  string `json:"startUrl"` // host only
	Password  string `json:"password,omitempty"`
}

type LiveClass struct {
	ID              string       `json:"id"`
	Title           string       `json:"title" validate:"required"`
	StartTime       time.Time    `json:"startTime" validate:"required"`
	DurationMinutes int          `json:"durationMinutes" validate:"gt=0"`
	InstructorID    string       `json:"instructorId" validate:"required"`
	CourseID        null.String  `json:"courseId"`
	MeetingLink     string       `json:"meetingLink,omitempty"`
	ZoomDetails     *ZoomDetails `json:"zoomDetails,omitempty"`
	Attendees       []string     `json:"attendees"`
	Status          Status       `json:"status" validate:"oneof=scheduled live completed cancelled"`
}

func (c LiveClass) HasAttendee(userID string) bool {
	for _, id := range c.Attendees {
		if id == userID {
			return true
		}
	}
	return false
}

// JoinLink prefers the generated meeting over the legacy link.
func (c LiveClass) JoinLink() string {
	if c.ZoomDetails != nil && c.ZoomDetails.JoinURL != "" {
		return c.ZoomDetails.JoinURL
	}
	return c.MeetingLink
}

func (c LiveClass) EndTime() time.Time {
	return c.StartTime.Add(time.Duration(c.DurationMinutes) * time.Minute)
}

// NewClass holds what a teacher provides to schedule a class.
type NewClass struct {
	Title           string      `json:"title" validate:"required"`
	StartTime       time.Time   `json:"startTime" validate:"required"`
	DurationMinutes int         `json:"durationMinutes" validate:"gt=0"`
	InstructorID    string      `json:"instructorId" validate:"required"`
	CourseID        null.String `json:"courseId"`
}

// MeetingProvider creates video meetings for live classes.
type MeetingProvider interface {
	CreateMeeting(ctx context.Context, topic string, start time.Time, durationMinutes int) (ZoomDetails, error)
}
