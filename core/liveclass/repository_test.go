package liveclass

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/core/notification"
	"github.com/owais185-web/LuminaLMSPush/core/user"
	"github.com/owais185-web/LuminaLMSPush/tests"
)

var now = time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo   *Repository
	notes  *notification.Repository
	outbox *testutil.Outbox
	clock  *testutil.Clock
}

func newFixture(t *testing.T, meetings MeetingProvider, seed ...LiveClass) *fixture {
	t.Helper()
	store, _, logger := testutil.NewStore(t)
	outbox := new(testutil.Outbox)
	clock := testutil.NewClock(now)
	notes := notification.NewRepository(store, outbox, nil)
	repo := NewRepository(store, outbox, notes, seed, Options{
		AdminRecipientID: "u1",
		Meetings:         meetings,
		Logger:           logger,
	})
	repo.nowFunc = clock.Now
	return &fixture{repo: repo, notes: notes, outbox: outbox, clock: clock}
}

func class(id string, startsIn time.Duration) LiveClass {
	return LiveClass{
		ID:              id,
		Title:           "Advanced Potions Q&A",
		StartTime:       now.Add(startsIn),
		DurationMinutes: 60,
		InstructorID:    "u2",
		CourseID:        null.StringFrom("c1"),
		Attendees:       []string{},
		Status:          StatusScheduled,
	}
}

func TestRepository_TeacherWindow(t *testing.T) {
	tests := []struct {
		name     string
		startsIn time.Duration
		wantOK   bool
	}{
		{name: "well ahead", startsIn: 24 * time.Hour, wantOK: true},
		{name: "just outside window", startsIn: testutil.Hours(4.01), wantOK: true},
		{name: "exactly at window", startsIn: 4 * time.Hour},
		{name: "just inside window", startsIn: testutil.Hours(3.99)},
		{name: "already started", startsIn: -time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("cancel", func(t *testing.T) {
				fx := newFixture(t, nil, class("lc1", tt.startsIn))
				res := fx.repo.Cancel(ctx, "lc1", user.RoleTeacher, "Prof. Snape")
				assert.Equal(t, tt.wantOK, res.Success, res.Error)

				cls, err := fx.repo.FindByID(ctx, "lc1")
				require.NoError(t, err)
				if tt.wantOK {
					assert.Equal(t, StatusCancelled, cls.Status)
					return
				}
				assert.Equal(t, ReasonCancelTooLate, res.Error)
				assert.Equal(t, StatusScheduled, cls.Status)
				assert.Empty(t, fx.notes.GetAll(ctx))
			})

			t.Run("reschedule", func(t *testing.T) {
				fx := newFixture(t, nil, class("lc1", tt.startsIn))
				newStart := now.Add(48 * time.Hour)
				res := fx.repo.Reschedule(ctx, "lc1", newStart, user.RoleTeacher, "Prof. Snape")
				assert.Equal(t, tt.wantOK, res.Success, res.Error)

				cls, err := fx.repo.FindByID(ctx, "lc1")
				require.NoError(t, err)
				if tt.wantOK {
					assert.True(t, newStart.Equal(cls.StartTime))
					return
				}
				assert.Equal(t, ReasonRescheduleTooLate, res.Error)
				assert.True(t, now.Add(tt.startsIn).Equal(cls.StartTime))
				assert.Empty(t, fx.notes.GetAll(ctx))
			})
		})
	}
}

func TestRepository_TeacherCancel(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil, class("lc1", 10*time.Hour))

	res := fx.repo.Cancel(ctx, "lc1", user.RoleTeacher, "Prof. Snape")
	require.True(t, res.Success, res.Error)

	notes := fx.notes.ForUser(ctx, "u1")
	require.Len(t, notes, 1)
	assert.Equal(t, notification.TypeAlert, notes[0].Type)
	assert.Equal(t, `Prof. Snape cancelled class "Advanced Potions Q&A".`, notes[0].Message)
	assert.Equal(t, notification.EventCancel, notes[0].Metadata.Event())
	assert.Equal(t, "lc1", notes[0].Metadata.String(notification.KeyClassID))

	res = fx.repo.Cancel(ctx, "lc1", user.RoleTeacher, "Prof. Snape")
	assert.False(t, res.Success)
	assert.Equal(t, ReasonCancelled, res.Error)

	var mirrored []string
	for _, call := range fx.outbox.Calls() {
		mirrored = append(mirrored, call.Collection)
	}
	assert.Equal(t, []string{Collection, notification.Collection}, mirrored)
}

func TestRepository_TeacherReschedule(t *testing.T) {
	ctx := context.Background()
	cls := class("lc1", 24*time.Hour)
	cls.Status = StatusLive
	fx := newFixture(t, nil, cls)

	newStart := now.Add(72 * time.Hour)
	res := fx.repo.Reschedule(ctx, "lc1", newStart, user.RoleTeacher, "Prof. Snape")
	require.True(t, res.Success, res.Error)

	got, _ := fx.repo.FindByID(ctx, "lc1")
	assert.Equal(t, StatusScheduled, got.Status)

	notes := fx.notes.ForUser(ctx, "u1")
	require.Len(t, notes, 1)
	assert.Equal(t, notification.TypeAlert, notes[0].Type)
	assert.Equal(t, `Prof. Snape rescheduled class "Advanced Potions Q&A".`, notes[0].Message)
	assert.Equal(t, notification.EventReschedule, notes[0].Metadata.Event())
	oldTime, ok := notes[0].Metadata.Time(notification.KeyOldTime)
	require.True(t, ok, "dates in metadata are revived")
	assert.True(t, cls.StartTime.Equal(oldTime))
	newTime, ok := notes[0].Metadata.Time(notification.KeyNewTime)
	require.True(t, ok)
	assert.True(t, newStart.Equal(newTime))

	t.Run("into the past", func(t *testing.T) {
		res := fx.repo.Reschedule(ctx, "lc1", now.Add(-time.Hour), user.RoleTeacher, "Prof. Snape")
		assert.Equal(t, core.Fail(ReasonStartInPast), res)
	})
	t.Run("no start time", func(t *testing.T) {
		res := fx.repo.Reschedule(ctx, "lc1", time.Time{}, user.RoleTeacher, "Prof. Snape")
		assert.Equal(t, core.Fail(ReasonNoStartTime), res)
	})
}

func TestRepository_StudentRequests(t *testing.T) {
	ctx := context.Background()
	// inside the window: students are never blocked
	orig := class("lc2", time.Hour)
	orig.Attendees = []string{"u3", "u4"}
	fx := newFixture(t, nil, orig)

	res := fx.repo.Cancel(ctx, "lc2", user.RoleStudent, "Harry P.")
	require.True(t, res.Success, res.Error)

	newStart := time.Date(2024, 9, 3, 15, 0, 0, 0, time.UTC)
	res = fx.repo.Reschedule(ctx, "lc2", newStart, user.RoleStudent, "Harry P.")
	require.True(t, res.Success, res.Error)
	assert.Equal(t, MsgRescheduleSent, res.Message)

	got, _ := fx.repo.FindByID(ctx, "lc2")
	assert.Equal(t, orig.Status, got.Status)
	assert.True(t, orig.StartTime.Equal(got.StartTime))
	assert.Equal(t, orig.Attendees, got.Attendees, "a withdrawal leaves the attendee list alone")

	notes := fx.notes.ForUser(ctx, "u1")
	require.Len(t, notes, 2)
	assert.Equal(t, notification.TypeInfo, notes[0].Type)
	assert.Equal(t, `Harry P. REQUESTED reschedule for "Advanced Potions Q&A" to Tue, Sep 3 2024 15:00 UTC.`, notes[0].Message)
	assert.Equal(t, notification.EventReschedule, notes[0].Metadata.Event())
	assert.Equal(t, notification.TypeInfo, notes[1].Type)
	assert.Equal(t, `Harry P. withdrew from class "Advanced Potions Q&A".`, notes[1].Message)

	for _, call := range fx.outbox.Calls() {
		assert.Equal(t, notification.Collection, call.Collection, "the class is never mirrored")
	}
}

func TestRepository_Rejections(t *testing.T) {
	ctx := context.Background()
	cancelled := class("lc3", 24*time.Hour)
	cancelled.Status = StatusCancelled
	fx := newFixture(t, nil, class("lc1", 24*time.Hour), cancelled)

	tests := []struct {
		name    string
		classID string
		role    user.Role
		want    string
	}{
		{name: "unknown class", classID: "nope", role: user.RoleTeacher, want: ReasonNotFound},
		{name: "admin", classID: "lc1", role: user.RoleAdmin, want: ReasonUnauthorized},
		{name: "unknown role", classID: "lc1", role: "janitor", want: ReasonUnauthorized},
		{name: "teacher on cancelled class", classID: "lc3", role: user.RoleTeacher, want: ReasonCancelled},
		{name: "student on cancelled class", classID: "lc3", role: user.RoleStudent, want: ReasonCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, core.Fail(tt.want), fx.repo.Cancel(ctx, tt.classID, tt.role, "Someone"))
			assert.Equal(t, core.Fail(tt.want), fx.repo.Reschedule(ctx, tt.classID, now.Add(72*time.Hour), tt.role, "Someone"))
		})
	}
	assert.Empty(t, fx.notes.GetAll(ctx))
	assert.Empty(t, fx.outbox.Calls())
}

// A class created 5h ahead can be cancelled until the clock crosses the window.
func TestRepository_WindowClosesOverTime(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil, class("lc1", 5*time.Hour))

	fx.clock.Advance(testutil.Hours(1.5))
	res := fx.repo.Cancel(ctx, "lc1", user.RoleTeacher, "Prof. Snape")
	assert.Equal(t, core.Fail(ReasonCancelTooLate), res)
}

func TestRepository_MarkAttendance(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil, class("lc1", time.Hour))

	first, err := fx.repo.MarkAttendance(ctx, "lc1", "u3")
	require.NoError(t, err)
	second, err := fx.repo.MarkAttendance(ctx, "lc1", "u3")
	require.NoError(t, err)
	assert.Equal(t, []string{"u3"}, first.Attendees)
	assert.Equal(t, first.Attendees, second.Attendees)
	assert.Len(t, fx.outbox.Calls(), 1)

	_, err = fx.repo.MarkAttendance(ctx, "nope", "u3")
	assert.Equal(t, ErrNotFound, err)
}

type fakeMeetings struct {
	err   error
	topic string
}

func (m *fakeMeetings) CreateMeeting(_ context.Context, topic string, _ time.Time, _ int) (ZoomDetails, error) {
	m.topic = topic
	if m.err != nil {
		return ZoomDetails{}, m.err
	}
	return ZoomDetails{MeetingID: "123", JoinURL: "https://zoom.example/j/123", StartURL: "https://zoom.example/s/123"}, nil
}

func TestRepository_Schedule(t *testing.T) {
	ctx := context.Background()
	meetings := new(fakeMeetings)
	fx := newFixture(t, meetings, class("lc1", time.Hour))

	cls, err := fx.repo.Schedule(ctx, NewClass{
		Title:           "  Herbology Lab ",
		StartTime:       now.Add(48 * time.Hour),
		DurationMinutes: 45,
		InstructorID:    "u2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, cls.ID)
	assert.Equal(t, "Herbology Lab", meetings.topic)
	assert.Equal(t, StatusScheduled, cls.Status)
	assert.Equal(t, []string{}, cls.Attendees)
	assert.Equal(t, "https://zoom.example/j/123", cls.JoinLink())

	all := fx.repo.GetAll(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, cls.ID, all[1].ID, "classes are appended")

	t.Run("invalid", func(t *testing.T) {
		_, err := fx.repo.Schedule(ctx, NewClass{Title: "No time", InstructorID: "u2", DurationMinutes: 30})
		_, ok := core.FieldErrors(err)
		assert.True(t, ok)
	})

	t.Run("provider failure", func(t *testing.T) {
		meetings.err = errors.New("zoom down")
		_, err := fx.repo.Schedule(ctx, NewClass{Title: "Charms", StartTime: now.Add(time.Hour), DurationMinutes: 30, InstructorID: "u2"})
		assert.Error(t, err)
		assert.Len(t, fx.repo.GetAll(ctx), 2)
	})
}

func TestRepository_Upcoming(t *testing.T) {
	ctx := context.Background()
	done := class("done", -3*time.Hour)
	cancelled := class("cancelled", time.Hour)
	cancelled.Status = StatusCancelled
	fx := newFixture(t, nil, class("later", 24*time.Hour), done, cancelled, class("soon", 45*time.Minute), class("running", -30*time.Minute))

	var ids []string
	for _, cls := range fx.repo.Upcoming(ctx) {
		ids = append(ids, cls.ID)
	}
	assert.Equal(t, []string{"running", "soon", "later"}, ids)
}
