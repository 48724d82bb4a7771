package liveclass

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/core/notification"
	"github.com/owais185-web/LuminaLMSPush/core/user"
	"github.com/owais185-web/LuminaLMSPush/storage/kv"
)

const (
	StorageKey = "lumina_classes"
	Collection = "classes"

	DefaultCancellationWindow = 4 * time.Hour

	reqTimeLayout = "Mon, Jan 2 2006 15:04 MST"
)

var ErrNotFound = errors.New("class not found")

// Rule violations reported in core.Result.Error
const (
	ReasonNotFound          = "Class not found"
	ReasonUnauthorized      = "Unauthorized"
	ReasonCancelled         = "Class is cancelled"
	ReasonCancelTooLate     = "Cannot cancel class less than 4 hours before start time."
	ReasonRescheduleTooLate = "Cannot reschedule less than 4 hours before start time."
	ReasonNoStartTime       = "A new start time is required."
	ReasonStartInPast       = "The new start time must be in the future."

	MsgCancelled      = "Class cancelled."
	MsgWithdrawn      = "Withdrawal sent to Admin."
	MsgRescheduled    = "Class rescheduled."
	MsgRescheduleSent = "Request sent to Admin."
)

type Options struct {
	AdminRecipientID   string
	CancellationWindow time.Duration // teacher actions are refused this close to the start
	Meetings           MeetingProvider
	Logger             core.Logger
}

// Repository owns live classes and enforces the scheduling rules:
// teachers act directly outside the cancellation window, students only
// send advisory notifications to the admin recipient.
type Repository struct {
	coll          *kv.Collection[LiveClass]
	outbox        core.Outbox
	notifications *notification.Repository
	meetings      MeetingProvider
	logger        core.Logger
	adminID       string
	window        time.Duration
	nowFunc       func() time.Time
}

func NewRepository(store *kv.Store, outbox core.Outbox, notes *notification.Repository, seed []LiveClass, opts Options) *Repository {
	vala.BeginValidation().Validate(
		vala.IsNotNil(outbox, "outbox"),
		vala.IsNotNil(notes, "notifications"),
		vala.IsNotNil(opts.Logger, "opts.Logger"),
		vala.StringNotEmpty(opts.AdminRecipientID, "opts.AdminRecipientID"),
	).CheckAndPanic()
	if opts.CancellationWindow <= 0 {
		opts.CancellationWindow = DefaultCancellationWindow
	}
	return &Repository{
		coll:          kv.NewCollection(store, StorageKey, seed),
		outbox:        outbox,
		notifications: notes,
		meetings:      opts.Meetings,
		logger:        opts.Logger,
		adminID:       opts.AdminRecipientID,
		window:        opts.CancellationWindow,
		nowFunc:       time.Now,
	}
}

func indexOf(classes []LiveClass, id string) int {
	for i, cls := range classes {
		if cls.ID == id {
			return i
		}
	}
	return -1
}

func (repo *Repository) GetAll(ctx context.Context) []LiveClass {
	return repo.coll.Load(ctx)
}

func (repo *Repository) FindByID(ctx context.Context, id string) (LiveClass, error) {
	classes := repo.coll.Load(ctx)
	if idx := indexOf(classes, id); idx >= 0 {
		return classes[idx], nil
	}
	return LiveClass{}, ErrNotFound
}

// Upcoming returns the classes that have not ended yet and are not cancelled, soonest first.
func (repo *Repository) Upcoming(ctx context.Context) []LiveClass {
	now := repo.nowFunc()
	upcoming := make([]LiveClass, 0)
	for _, cls := range repo.coll.Load(ctx) {
		if cls.Status == StatusCancelled || cls.Status == StatusCompleted || !cls.EndTime().After(now) {
			continue
		}
		upcoming = append(upcoming, cls)
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].StartTime.Before(upcoming[j].StartTime) })
	return upcoming
}

// Add appends cls. Callers sort by start time.
func (repo *Repository) Add(ctx context.Context, cls LiveClass) (LiveClass, error) {
	if cls.ID == "" {
		cls.ID = uuid.NewString()
	}
	if cls.Attendees == nil {
		cls.Attendees = make([]string, 0)
	}
	if cls.Status == "" {
		cls.Status = StatusScheduled
	}
	if err := core.CheckStruct(cls); err != nil {
		return LiveClass{}, err
	}

	classes := repo.coll.Load(ctx)
	repo.coll.Save(ctx, append(classes, cls))
	repo.outbox.Put(Collection, cls.ID, cls)
	return cls, nil
}

// Schedule creates a class, generating its meeting when a provider is configured.
func (repo *Repository) Schedule(ctx context.Context, nc NewClass) (LiveClass, error) {
	nc.Title = core.CleanString(nc.Title)
	if err := core.CheckStruct(nc); err != nil {
		return LiveClass{}, err
	}

	cls := LiveClass{
		Title:           nc.Title,
		StartTime:       nc.StartTime,
		DurationMinutes: nc.DurationMinutes,
		InstructorID:    nc.InstructorID,
		CourseID:        nc.CourseID,
		Status:          StatusScheduled,
	}
	if repo.meetings != nil {
		zoom, err := repo.meetings.CreateMeeting(ctx, nc.Title, nc.StartTime, nc.DurationMinutes)
		if err != nil {
			return LiveClass{}, errors.Wrap(err, "creating meeting")
		}
		cls.ZoomDetails = &zoom
	}
	return repo.Add(ctx, cls)
}

// MarkAttendance records userID as attendee. Marking twice is a no-op.
func (repo *Repository) MarkAttendance(ctx context.Context, classID, userID string) (LiveClass, error) {
	classes := repo.coll.Load(ctx)
	idx := indexOf(classes, classID)
	if idx < 0 {
		return LiveClass{}, ErrNotFound
	}

	cls := classes[idx]
	if cls.HasAttendee(userID) {
		return cls, nil
	}
	attendees := make([]string, 0, len(cls.Attendees)+1)
	cls.Attendees = append(append(attendees, cls.Attendees...), userID)

	classes[idx] = cls
	repo.coll.Save(ctx, classes)
	repo.outbox.Put(Collection, cls.ID, cls)
	return cls, nil
}

// tooLate reports whether a teacher may no longer change cls.
// A class starting exactly at the end of the window is already too late.
func (repo *Repository) tooLate(cls LiveClass) bool {
	return cls.StartTime.Sub(repo.nowFunc()) <= repo.window
}

func (repo *Repository) notifyAdmin(ctx context.Context, typ notification.Type, msg string, md notification.Metadata) {
	if _, err := repo.notifications.Notify(ctx, repo.adminID, typ, msg, md); err != nil {
		repo.logger.Error("liveclass: notifying admin", err)
	}
}

// Cancel lets a teacher cancel a class, or a student withdraw from it.
// A student withdrawal leaves the class untouched.
func (repo *Repository) Cancel(ctx context.Context, classID string, role user.Role, requesterName string) core.Result {
	classes := repo.coll.Load(ctx)
	idx := indexOf(classes, classID)
	if idx < 0 {
		return core.Fail(ReasonNotFound)
	}
	cls := classes[idx]

	switch role {
	case user.RoleTeacher:
		if cls.Status == StatusCancelled {
			return core.Fail(ReasonCancelled)
		}
		if repo.tooLate(cls) {
			return core.Fail(ReasonCancelTooLate)
		}
		cls.Status = StatusCancelled
		classes[idx] = cls
		repo.coll.Save(ctx, classes)
		repo.outbox.Put(Collection, cls.ID, cls)

		repo.notifyAdmin(ctx, notification.TypeAlert,
			fmt.Sprintf(`%s cancelled class "%s".`, requesterName, cls.Title),
			notification.NewMetadata(notification.EventCancel, notification.KeyClassID, cls.ID),
		)
		return core.Ok(MsgCancelled)

	case user.RoleStudent:
		if cls.Status == StatusCancelled {
			return core.Fail(ReasonCancelled)
		}
		repo.notifyAdmin(ctx, notification.TypeInfo,
			fmt.Sprintf(`%s withdrew from class "%s".`, requesterName, cls.Title),
			notification.NewMetadata(notification.EventCancel, notification.KeyClassID, cls.ID),
		)
		return core.Ok(MsgWithdrawn)

	default:
		return core.Fail(ReasonUnauthorized)
	}
}

// Reschedule lets a teacher move a class, or a student request a new time.
// Only teacher reschedules are bound by the cancellation window: a student
// request never changes the class.
func (repo *Repository) Reschedule(ctx context.Context, classID string, newStart time.Time, role user.Role, requesterName string) core.Result {
	classes := repo.coll.Load(ctx)
	idx := indexOf(classes, classID)
	if idx < 0 {
		return core.Fail(ReasonNotFound)
	}
	cls := classes[idx]

	if role != user.RoleTeacher && role != user.RoleStudent {
		return core.Fail(ReasonUnauthorized)
	}
	if cls.Status == StatusCancelled {
		return core.Fail(ReasonCancelled)
	}
	if newStart.IsZero() {
		return core.Fail(ReasonNoStartTime)
	}

	if role == user.RoleStudent {
		repo.notifyAdmin(ctx, notification.TypeInfo,
			fmt.Sprintf(`%s REQUESTED reschedule for "%s" to %s.`, requesterName, cls.Title, newStart.Format(reqTimeLayout)),
			notification.NewMetadata(notification.EventReschedule,
				notification.KeyClassID, cls.ID,
				notification.KeyOldTime, cls.StartTime,
				notification.KeyNewTime, newStart,
			),
		)
		return core.Ok(MsgRescheduleSent)
	}

	if repo.tooLate(cls) {
		return core.Fail(ReasonRescheduleTooLate)
	}
	if !newStart.After(repo.nowFunc()) {
		return core.Fail(ReasonStartInPast)
	}

	oldStart := cls.StartTime
	cls.StartTime = newStart
	cls.Status = StatusScheduled
	classes[idx] = cls
	repo.coll.Save(ctx, classes)
	repo.outbox.Put(Collection, cls.ID, cls)

	repo.notifyAdmin(ctx, notification.TypeAlert,
		fmt.Sprintf(`%s rescheduled class "%s".`, requesterName, cls.Title),
		notification.NewMetadata(notification.EventReschedule,
			notification.KeyClassID, cls.ID,
			notification.KeyOldTime, oldStart,
			notification.KeyNewTime, newStart,
		),
	)
	return core.Ok(MsgRescheduled)
}
