package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/storage/kv"
)

const (
	StorageKey = "lumina_notifications"
	Collection = "notifications"
)

var ErrNotFound = errors.New("notification not found")

type Repository struct {
	coll    *kv.Collection[Notification]
	outbox  core.Outbox
	nowFunc func() time.Time
}

func NewRepository(store *kv.Store, outbox core.Outbox, seed []Notification) *Repository {
	vala.BeginValidation().Validate(
		vala.IsNotNil(outbox, "outbox"),
	).CheckAndPanic()
	return &Repository{
		coll:    kv.NewCollection(store, StorageKey, seed),
		outbox:  outbox,
		nowFunc: time.Now,
	}
}

func (repo *Repository) GetAll(ctx context.Context) []Notification {
	return repo.coll.Load(ctx)
}

// Add prepends n, newest first.
func (repo *Repository) Add(ctx context.Context, n Notification) (Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = repo.nowFunc()
	}
	if err := core.CheckStruct(n); err != nil {
		return Notification{}, err
	}

	notes := repo.coll.Load(ctx)
	repo.coll.Save(ctx, append([]Notification{n}, notes...))
	repo.outbox.Put(Collection, n.ID, n)
	return n, nil
}

// Notify builds and adds a notification for userID.
func (repo *Repository) Notify(ctx context.Context, userID string, typ Type, message string, md Metadata) (Notification, error) {
	return repo.Add(ctx, Notification{
		UserID:   userID,
		Type:     typ,
		Message:  message,
		Metadata: md,
	})
}

// MarkRead flags a notification as read. The change stays local.
func (repo *Repository) MarkRead(ctx context.Context, id string) error {
	notes := repo.coll.Load(ctx)
	for i := range notes {
		if notes[i].ID == id {
			if notes[i].IsRead {
				return nil
			}
			notes[i].IsRead = true
			repo.coll.Save(ctx, notes)
			return nil
		}
	}
	return ErrNotFound
}

func (repo *Repository) ForUser(ctx context.Context, userID string) []Notification {
	notes := make([]Notification, 0)
	for _, n := range repo.coll.Load(ctx) {
		if n.UserID == userID {
			notes = append(notes, n)
		}
	}
	return notes
}

func (repo *Repository) UnreadCount(ctx context.Context, userID string) int {
	var count int
	for _, n := range repo.ForUser(ctx, userID) {
		if !n.IsRead {
			count++
		}
	}
	return count
}
