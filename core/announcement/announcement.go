package announcement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/core/user"
	"github.com/owais185-web/LuminaLMSPush/storage/kv"
)

const (
	StorageKey = "lumina_announcements"
	Collection = "announcements"
)

var ErrNotFound = errors.New("announcement not found")

type Audience string

const (
	AudienceAll      Audience = "all"
	AudienceStudents Audience = "students"
	AudienceTeachers Audience = "teachers"
)

type Announcement struct {
	ID       string      `json:"id"`
	Title    string      `json:"title" validate:"required"`
	Content  string      `json:"content" validate:"required"`
	Audience Audience    `json:"audience" validate:"oneof=all students teachers"`
	CourseID null.String `json:"courseId"`
	Date     time.Time   `json:"date"`
	Author   string      `json:"author" validate:"required"`
}

// Reaches reports whether a user having role sees the announcement.
// Admins see everything.
func (a Announcement) Reaches(role user.Role) bool {
	switch a.Audience {
	case AudienceAll:
		return true
	case AudienceStudents:
		return role == user.RoleStudent || role == user.RoleAdmin
	case AudienceTeachers:
		return role == user.RoleTeacher || role == user.RoleAdmin
	}
	return false
}

type Repository struct {
	coll    *kv.Collection[Announcement]
	outbox  core.Outbox
	nowFunc func() time.Time
}

func NewRepository(store *kv.Store, outbox core.Outbox, seed []Announcement) *Repository {
	vala.BeginValidation().Validate(
		vala.IsNotNil(outbox, "outbox"),
	).CheckAndPanic()
	return &Repository{
		coll:    kv.NewCollection(store, StorageKey, seed),
		outbox:  outbox,
		nowFunc: time.Now,
	}
}

func (repo *Repository) GetAll(ctx context.Context) []Announcement {
	return repo.coll.Load(ctx)
}

// Add prepends a, newest first.
func (repo *Repository) Add(ctx context.Context, a Announcement) (Announcement, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Date.IsZero() {
		a.Date = repo.nowFunc()
	}
	if a.Audience == "" {
		a.Audience = AudienceAll
	}
	a.Title = core.CleanString(a.Title)
	if err := core.CheckStruct(a); err != nil {
		return Announcement{}, err
	}

	items := repo.coll.Load(ctx)
	repo.coll.Save(ctx, append([]Announcement{a}, items...))
	repo.outbox.Put(Collection, a.ID, a)
	return a, nil
}

func (repo *Repository) Delete(ctx context.Context, id string) error {
	items := repo.coll.Load(ctx)
	for i, a := range items {
		if a.ID == id {
			repo.coll.Save(ctx, append(items[:i:i], items[i+1:]...))
			repo.outbox.Delete(Collection, id)
			return nil
		}
	}
	return ErrNotFound
}

// ForAudience returns the announcements a user having role sees, newest first.
func (repo *Repository) ForAudience(ctx context.Context, role user.Role) []Announcement {
	items := make([]Announcement, 0)
	for _, a := range repo.coll.Load(ctx) {
		if a.Reaches(role) {
			items = append(items, a)
		}
	}
	return items
}
