package resource

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/volatiletech/null/v8"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/storage/kv"
)

const (
	StorageKey = "lumina_resources"
	Collection = "resources"
)

type Type string

const (
	TypePDF   Type = "pdf"
	TypeDoc   Type = "doc"
	TypeImage Type = "image"
	TypeLink  Type = "link"
)

type Resource struct {
	ID          string      `json:"id"`
	Title       string      `json:"title" validate:"required"`
	Type        Type        `json:"type" validate:"oneof=pdf doc image link"`
	URL         string      `json:"url" validate:"required"`
	CourseID    null.String `json:"courseId"` // null for library-wide resources
	Description string      `json:"description"`
	DateAdded   time.Time   `json:"dateAdded"`
	IsLocked    bool        `json:"isLocked"`
}

type Repository struct {
	coll    *kv.Collection[Resource]
	outbox  core.Outbox
	nowFunc func() time.Time
}

func NewRepository(store *kv.Store, outbox core.Outbox, seed []Resource) *Repository {
	vala.BeginValidation().Validate(
		vala.IsNotNil(outbox, "outbox"),
	).CheckAndPanic()
	return &Repository{
		coll:    kv.NewCollection(store, StorageKey, seed),
		outbox:  outbox,
		nowFunc: time.Now,
	}
}

func (repo *Repository) GetAll(ctx context.Context) []Resource {
	return repo.coll.Load(ctx)
}

// Add prepends r, newest first.
func (repo *Repository) Add(ctx context.Context, r Resource) (Resource, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.DateAdded.IsZero() {
		r.DateAdded = repo.nowFunc()
	}
	r.Title = core.CleanString(r.Title)
	if err := core.CheckStruct(r); err != nil {
		return Resource{}, err
	}

	resources := repo.coll.Load(ctx)
	repo.coll.Save(ctx, append([]Resource{r}, resources...))
	repo.outbox.Put(Collection, r.ID, r)
	return r, nil
}

// ForCourse returns the resources of courseID along with the library-wide ones.
func (repo *Repository) ForCourse(ctx context.Context, courseID string) []Resource {
	resources := make([]Resource, 0)
	for _, r := range repo.coll.Load(ctx) {
		if !r.CourseID.Valid || r.CourseID.String == courseID {
			resources = append(resources, r)
		}
	}
	return resources
}
