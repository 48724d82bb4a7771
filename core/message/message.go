package message

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/storage/kv"
)

const (
	StorageKey = "lumina_messages"
	Collection = "messages"
)

type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentFile  AttachmentType = "file"
)

type Attachment struct {
	Type AttachmentType `json:"type" validate:"oneof=image file"`
	URL  string         `json:"url" validate:"required"`
	Name string         `json:"name"`
}

// Message is either posted to a channel or sent privately to ReceiverID.
type Message struct {
	ID         string      `json:"id"`
	SenderID   string      `json:"senderId" validate:"required"`
	SenderName string      `json:"senderName"`
	ReceiverID string      `json:"receiverId,omitempty" validate:"required_without=ChannelID"`
	ChannelID  string      `json:"channelId,omitempty"`
	Content    string      `json:"content" validate:"required_without=Attachment"`
	Timestamp  time.Time   `json:"timestamp"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

func (m Message) IsPrivate() bool { return m.ChannelID == "" }

type Repository struct {
	coll    *kv.Collection[Message]
	outbox  core.Outbox
	nowFunc func() time.Time
}

func NewRepository(store *kv.Store, outbox core.Outbox, seed []Message) *Repository {
	vala.BeginValidation().Validate(
		vala.IsNotNil(outbox, "outbox"),
	).CheckAndPanic()
	return &Repository{
		coll:    kv.NewCollection(store, StorageKey, seed),
		outbox:  outbox,
		nowFunc: time.Now,
	}
}

func (repo *Repository) GetAll(ctx context.Context) []Message {
	return repo.coll.Load(ctx)
}

// Add appends msg. Readers sort by timestamp.
func (repo *Repository) Add(ctx context.Context, msg Message) (Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = repo.nowFunc()
	}
	msg.Content = core.CleanString(msg.Content)
	if err := core.CheckStruct(msg); err != nil {
		return Message{}, err
	}

	msgs := repo.coll.Load(ctx)
	repo.coll.Save(ctx, append(msgs, msg))
	repo.outbox.Put(Collection, msg.ID, msg)
	return msg, nil
}

func (repo *Repository) filter(ctx context.Context, keep func(Message) bool) []Message {
	msgs := make([]Message, 0)
	for _, msg := range repo.coll.Load(ctx) {
		if keep(msg) {
			msgs = append(msgs, msg)
		}
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Timestamp.Before(msgs[j].Timestamp) })
	return msgs
}

// Channel returns the messages of channelID, oldest first.
func (repo *Repository) Channel(ctx context.Context, channelID string) []Message {
	return repo.filter(ctx, func(msg Message) bool { return msg.ChannelID == channelID })
}

// Conversation returns the private messages exchanged between two users, oldest first.
func (repo *Repository) Conversation(ctx context.Context, userA, userB string) []Message {
	return repo.filter(ctx, func(msg Message) bool {
		if !msg.IsPrivate() {
			return false
		}
		return (msg.SenderID == userA && msg.ReceiverID == userB) || (msg.SenderID == userB && msg.ReceiverID == userA)
	})
}
