package message

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/tests"
)

var now = time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

func newRepo(t *testing.T, seed ...Message) (*Repository, *testutil.Outbox) {
	t.Helper()
	store, _, _ := testutil.NewStore(t)
	outbox := new(testutil.Outbox)
	repo := NewRepository(store, outbox, seed)
	repo.nowFunc = func() time.Time { return now }
	return repo, outbox
}

func TestRepository_Add(t *testing.T) {
	ctx := context.Background()
	repo, outbox := newRepo(t, Message{ID: "m1", SenderID: "u2", ChannelID: "general", Content: "Welcome", Timestamp: now.Add(-time.Hour)})

	tests := []struct {
		name      string
		msg       Message
		wantField string
	}{
		{name: "channel", msg: Message{SenderID: "u3", ChannelID: "c1", Content: " Hi "}},
		{name: "private", msg: Message{SenderID: "u3", ReceiverID: "u2", Content: "Question"}},
		{name: "attachment only", msg: Message{SenderID: "u3", ChannelID: "c1", Attachment: &Attachment{Type: AttachmentFile, URL: "https://files.example/notes.pdf", Name: "notes.pdf"}}},
		{name: "no destination", msg: Message{SenderID: "u3", Content: "Lost"}, wantField: "receiverId"},
		{name: "empty", msg: Message{SenderID: "u3", ChannelID: "c1", Content: "  "}, wantField: "content"},
		{name: "anonymous", msg: Message{ChannelID: "c1", Content: "Boo"}, wantField: "senderId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := repo.Add(ctx, tt.msg)
			if tt.wantField != "" {
				fields, ok := core.FieldErrors(err)
				require.True(t, ok, "want a validation error, got %v", err)
				assert.Equal(t, tt.wantField, fields[0].Field)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, msg.ID)
			assert.True(t, now.Equal(msg.Timestamp))
		})
	}

	msgs := repo.GetAll(ctx)
	require.Len(t, msgs, 4)
	assert.Equal(t, "m1", msgs[0].ID, "messages are appended")
	assert.Equal(t, "Hi", msgs[1].Content)
	assert.Len(t, outbox.Calls(), 3)
}

func TestRepository_Channel(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t,
		Message{ID: "m3", SenderID: "u3", ChannelID: "c1", Content: "third", Timestamp: now.Add(3 * time.Minute)},
		Message{ID: "m1", SenderID: "u2", ChannelID: "c1", Content: "first", Timestamp: now.Add(time.Minute)},
		Message{ID: "g1", SenderID: "u1", ChannelID: "general", Content: "other", Timestamp: now},
		Message{ID: "m2", SenderID: "u3", ChannelID: "c1", Content: "second", Timestamp: now.Add(2 * time.Minute)},
	)

	var ids []string
	for _, msg := range repo.Channel(ctx, "c1") {
		ids = append(ids, msg.ID)
	}
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids)
	assert.Empty(t, repo.Channel(ctx, "c9"))
}

func TestRepository_Conversation(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t,
		Message{ID: "p2", SenderID: "u2", ReceiverID: "u3", Content: "reply", Timestamp: now.Add(time.Minute)},
		Message{ID: "p1", SenderID: "u3", ReceiverID: "u2", Content: "ask", Timestamp: now},
		Message{ID: "p3", SenderID: "u4", ReceiverID: "u2", Content: "unrelated", Timestamp: now},
		Message{ID: "c1", SenderID: "u3", ChannelID: "c1", Content: "public", Timestamp: now},
	)

	var ids []string
	for _, msg := range repo.Conversation(ctx, "u2", "u3") {
		ids = append(ids, msg.ID)
	}
	assert.Equal(t, []string{"p1", "p2"}, ids)
}
