package main

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/core/announcement"
	"github.com/owais185-web/LuminaLMSPush/core/billing"
	"github.com/owais185-web/LuminaLMSPush/core/coupon"
	"github.com/owais185-web/LuminaLMSPush/core/course"
	"github.com/owais185-web/LuminaLMSPush/core/liveclass"
	"github.com/owais185-web/LuminaLMSPush/core/message"
	"github.com/owais185-web/LuminaLMSPush/core/notification"
	"github.com/owais185-web/LuminaLMSPush/core/resource"
	"github.com/owais185-web/LuminaLMSPush/core/ticket"
	"github.com/owais185-web/LuminaLMSPush/core/transaction"
	"github.com/owais185-web/LuminaLMSPush/core/user"
	identitysvc "github.com/owais185-web/LuminaLMSPush/services/identity"
	"github.com/owais185-web/LuminaLMSPush/storage/database"
	dummydb "github.com/owais185-web/LuminaLMSPush/storage/database/dummy"
	sqlxdb "github.com/owais185-web/LuminaLMSPush/storage/database/sqlx"
	"github.com/owais185-web/LuminaLMSPush/storage/kv"
	"github.com/owais185-web/LuminaLMSPush/storage/seed"
)

// services are the external providers the app talks to.
type services struct {
	Outbox   core.Outbox
	Email    core.EmailService
	Gateway  billing.Gateway
	Meetings liveclass.MeetingProvider
	Identity *identitysvc.TokenParser
}

// app holds every repository built over one shared store.
type app struct {
	conf   *core.Config
	logger core.Logger
	db     *sqlx.DB // nil with the memory driver
	store  *kv.Store

	users         *user.Repository
	courses       *course.Repository
	classes       *liveclass.Repository
	messages      *message.Repository
	notifications *notification.Repository
	transactions  *transaction.Repository
	coupons       *coupon.Repository
	tickets       *ticket.Repository
	resources     *resource.Repository
	announcements *announcement.Repository
	billing       *billing.Service
	identity      *identitysvc.TokenParser
}

// openBackend returns the storage backend selected by conf.Store.Driver.
// SQL databases are created and migrated when needed.
func openBackend(conf *core.Config) (kv.Backend, *sqlx.DB, error) {
	if conf.Store.Driver == core.DriverMemory {
		backend, err := dummydb.Open()
		return backend, nil, err
	}
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db.DB, conf.Store.Driver); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return sqlxdb.NewBackend(db), db, nil
}

func newApp(conf *core.Config, logger core.Logger, backend kv.Backend, db *sqlx.DB, svcs services) (*app, error) {
	vala.BeginValidation().Validate(
		vala.IsNotNil(svcs.Outbox, "Outbox"),
		vala.IsNotNil(svcs.Email, "Email"),
		vala.IsNotNil(svcs.Gateway, "Gateway"),
		vala.IsNotNil(svcs.Identity, "Identity"),
	).CheckAndPanic()

	data, err := seed.New(time.Now())
	if err != nil {
		return nil, errors.Wrap(err, "building seed data")
	}

	store := kv.NewStore(backend, logger)
	a := &app{
		conf:          conf,
		logger:        logger,
		db:            db,
		store:         store,
		users:         user.NewRepository(store, svcs.Outbox, data.Users),
		courses:       course.NewRepository(store, svcs.Outbox, data.Courses),
		messages:      message.NewRepository(store, svcs.Outbox, data.Messages),
		notifications: notification.NewRepository(store, svcs.Outbox, data.Notifications),
		transactions:  transaction.NewRepository(store, svcs.Outbox, data.Transactions),
		coupons:       coupon.NewRepository(store, data.Coupons),
		tickets:       ticket.NewRepository(store, svcs.Outbox, data.Tickets),
		resources:     resource.NewRepository(store, svcs.Outbox, data.Resources),
		announcements: announcement.NewRepository(store, svcs.Outbox, data.Announcements),
		identity:      svcs.Identity,
	}
	a.classes = liveclass.NewRepository(store, svcs.Outbox, a.notifications, data.Classes, liveclass.Options{
		AdminRecipientID:   conf.AdminRecipientID,
		CancellationWindow: conf.Scheduling.CancellationWindow,
		Meetings:           svcs.Meetings,
		Logger:             logger,
	})
	a.billing = billing.NewService(billing.Deps{
		Users:         a.users,
		Courses:       a.courses,
		Transactions:  a.transactions,
		Coupons:       a.coupons,
		Tickets:       a.tickets,
		Notifications: a.notifications,
		Gateway:       svcs.Gateway,
		Email:         svcs.Email,
		Logger:        logger,
	}, conf)
	return a, nil
}

// collectionSizes loads every collection, persisting the seed of the ones never written.
func (a *app) collectionSizes(ctx context.Context) []collectionSize {
	return []collectionSize{
		{user.StorageKey, len(a.users.GetAll(ctx))},
		{course.StorageKey, len(a.courses.GetAll(ctx))},
		{liveclass.StorageKey, len(a.classes.GetAll(ctx))},
		{message.StorageKey, len(a.messages.GetAll(ctx))},
		{notification.StorageKey, len(a.notifications.GetAll(ctx))},
		{transaction.StorageKey, len(a.transactions.GetAll(ctx))},
		{coupon.StorageKey, len(a.coupons.GetAll(ctx))},
		{ticket.StorageKey, len(a.tickets.GetAll(ctx))},
		{resource.StorageKey, len(a.resources.GetAll(ctx))},
		{announcement.StorageKey, len(a.announcements.GetAll(ctx))},
	}
}

type collectionSize struct {
	key  string
	size int
}
