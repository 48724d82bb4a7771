package course

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/storage/kv"
)

const (
	StorageKey = "lumina_courses"
	Collection = "courses"
)

var ErrNotFound = errors.New("course not found")

type Repository struct {
	coll    *kv.Collection[Course]
	outbox  core.Outbox
	nowFunc func() time.Time
}

func NewRepository(store *kv.Store, outbox core.Outbox, seed []Course) *Repository {
	vala.BeginValidation().Validate(
		vala.IsNotNil(outbox, "outbox"),
	).CheckAndPanic()
	return &Repository{
		coll:    kv.NewCollection(store, StorageKey, seed),
		outbox:  outbox,
		nowFunc: time.Now,
	}
}

func indexOf(courses []Course, id string) int {
	for i, c := range courses {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func clean(c Course) Course {
	c.Title = core.CleanString(c.Title)
	c.Instructor = core.CleanString(c.Instructor)
	if c.Status == "" {
		c.Status = StatusDraft
	}
	if c.Content == nil {
		c.Content = make([]Module, 0)
	}
	if c.Reviews == nil {
		c.Reviews = make([]Review, 0)
	}
	return c
}

func (repo *Repository) GetAll(ctx context.Context) []Course {
	return repo.coll.Load(ctx)
}

func (repo *Repository) FindByID(ctx context.Context, id string) (Course, error) {
	courses := repo.coll.Load(ctx)
	if idx := indexOf(courses, id); idx >= 0 {
		return courses[idx], nil
	}
	return Course{}, ErrNotFound
}

// Published returns the courses students may browse.
func (repo *Repository) Published(ctx context.Context) []Course {
	courses := make([]Course, 0)
	for _, c := range repo.coll.Load(ctx) {
		if c.IsPublished() {
			courses = append(courses, c)
		}
	}
	return courses
}

// Add prepends c, newest first.
func (repo *Repository) Add(ctx context.Context, c Course) (Course, error) {
	c = clean(c)
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := core.CheckStruct(c); err != nil {
		return Course{}, err
	}

	courses := repo.coll.Load(ctx)
	if indexOf(courses, c.ID) >= 0 {
		return Course{}, errors.Errorf("course %s already exists", c.ID)
	}
	repo.coll.Save(ctx, append([]Course{c}, courses...))
	repo.outbox.Put(Collection, c.ID, c)
	return c, nil
}

func (repo *Repository) Update(ctx context.Context, c Course) (Course, error) {
	c = clean(c)
	if err := core.CheckStruct(c); err != nil {
		return Course{}, err
	}

	courses := repo.coll.Load(ctx)
	idx := indexOf(courses, c.ID)
	if idx < 0 {
		return Course{}, ErrNotFound
	}
	courses[idx] = c
	repo.coll.Save(ctx, courses)
	repo.outbox.Put(Collection, c.ID, c)
	return c, nil
}

func (repo *Repository) Delete(ctx context.Context, id string) error {
	courses := repo.coll.Load(ctx)
	idx := indexOf(courses, id)
	if idx < 0 {
		return ErrNotFound
	}
	repo.coll.Save(ctx, append(courses[:idx:idx], courses[idx+1:]...))
	repo.outbox.Delete(Collection, id)
	return nil
}

// AddReview prepends review to the course's reviews.
func (repo *Repository) AddReview(ctx context.Context, courseID string, review Review) (Course, error) {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.Date.IsZero() {
		review.Date = repo.nowFunc()
	}
	review.Comment = core.CleanString(review.Comment)
	if err := core.CheckStruct(review); err != nil {
		return Course{}, err
	}

	courses := repo.coll.Load(ctx)
	idx := indexOf(courses, courseID)
	if idx < 0 {
		return Course{}, ErrNotFound
	}
	c := courses[idx]
	c.Reviews = append([]Review{review}, c.Reviews...)

	courses[idx] = c
	repo.coll.Save(ctx, courses)
	repo.outbox.Put(Collection, c.ID, c)
	return c, nil
}

// RecordSale counts a new student and adds amount to the course revenue.
func (repo *Repository) RecordSale(ctx context.Context, courseID string, amount decimal.Decimal) (Course, error) {
	courses := repo.coll.Load(ctx)
	idx := indexOf(courses, courseID)
	if idx < 0 {
		return Course{}, ErrNotFound
	}
	c := courses[idx]
	c.Students++
	c.Revenue = c.Revenue.Add(amount)

	courses[idx] = c
	repo.coll.Save(ctx, courses)
	repo.outbox.Put(Collection, c.ID, c)
	return c, nil
}
