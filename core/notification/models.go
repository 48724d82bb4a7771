package notification

import "time"

type Type string

const (
	TypeAlert   Type = "alert"
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
)

type Event string

const (
	EventReschedule   Event = "reschedule"
	EventCancel       Event = "cancel"
	EventAnnouncement Event = "announcement"
	EventPayment      Event = "payment"
	EventRefund       Event = "refund"
	EventTicket       Event = "ticket"
)

// Metadata keys
const (
	KeyEvent         = "event"
	KeyClassID       = "classId"
	KeyTransactionID = "transactionId"
	KeyTicketID      = "ticketId"
	KeyOldTime       = "oldTime"
	KeyNewTime       = "newTime"
)

// Metadata is free-form: dates in it are revived as time.Time when loaded.
type Metadata map[string]interface{}

func NewMetadata(event Event, kvs ...interface{}) Metadata {
	md := Metadata{KeyEvent: string(event)}
	for i := 0; i+1 < len(kvs); i += 2 {
		if k, ok := kvs[i].(string); ok {
			md[k] = kvs[i+1]
		}
	}
	return md
}

func (md Metadata) Event() Event {
	return Event(md.String(KeyEvent))
}

func (md Metadata) String(key string) string {
	s, _ := md[key].(string)
	return s
}

func (md Metadata) Time(key string) (time.Time, bool) {
	t, ok := md[key].(time.Time)
	return t, ok
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId" validate:"required"` // recipient
	Type      Type      `json:"type" validate:"required,oneof=alert info success"`
	Message   string    `json:"message" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
	IsRead    bool      `json:"isRead"`
	Metadata  Metadata  `json:"metadata,omitempty"`
}
