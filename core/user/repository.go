package user

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/storage/kv"
)

const (
	StorageKey = "lumina_users"
	Collection = "users"

	defaultExternalName = "Lumina Student"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Repository struct {
	coll   *kv.Collection[User]
	outbox core.Outbox
}

func NewRepository(store *kv.Store, outbox core.Outbox, seed []User) *Repository {
	vala.BeginValidation().Validate(
		vala.IsNotNil(outbox, "outbox"),
	).CheckAndPanic()
	return &Repository{
		coll:   kv.NewCollection(store, StorageKey, seed),
		outbox: outbox,
	}
}

func (repo *Repository) mirror(usr User) {
	repo.outbox.Put(Collection, usr.ID, usr.Public())
}

func indexOf(users []User, id string) int {
	for i, usr := range users {
		if usr.ID == id {
			return i
		}
	}
	return -1
}

func indexOfEmail(users []User, email string) int {
	email = core.CleanString(email, true /* lower */)
	for i, usr := range users {
		if strings.ToLower(usr.Email) == email {
			return i
		}
	}
	return -1
}

func emailTaken(users []User, email, exclID string) bool {
	idx := indexOfEmail(users, email)
	return idx >= 0 && users[idx].ID != exclID
}

func clean(usr User) User {
	usr.Name = core.CleanString(usr.Name)
	usr.Email = core.CleanString(usr.Email, true /* lower */)
	if usr.EnrolledCourses == nil {
		usr.EnrolledCourses = make([]string, 0)
	}
	if usr.Billing.Status == "" {
		usr.Billing.Status = BillingActive
	}
	return usr
}

func checkUnique(users []User, usr User) error {
	if emailTaken(users, usr.Email, usr.ID) {
		return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	}
	return nil
}

func (repo *Repository) GetAll(ctx context.Context) []User {
	return repo.coll.Load(ctx)
}

func (repo *Repository) FindByID(ctx context.Context, id string) (User, error) {
	users := repo.coll.Load(ctx)
	if idx := indexOf(users, id); idx >= 0 {
		return users[idx], nil
	}
	return User{}, ErrNotFound
}

// FindByEmail matches email case-insensitively.
func (repo *Repository) FindByEmail(ctx context.Context, email string) (User, error) {
	users := repo.coll.Load(ctx)
	if idx := indexOfEmail(users, email); idx >= 0 {
		return users[idx], nil
	}
	return User{}, ErrNotFound
}

func (repo *Repository) Add(ctx context.Context, usr User) (User, error) {
	usr = clean(usr)
	if usr.ID == "" {
		usr.ID = uuid.NewString()
	}
	if err := core.CheckStruct(usr); err != nil {
		return User{}, err
	}

	users := repo.coll.Load(ctx)
	if indexOf(users, usr.ID) >= 0 {
		return User{}, errors.Errorf("user %s already exists", usr.ID)
	}
	if err := checkUnique(users, usr); err != nil {
		return User{}, err
	}

	repo.coll.Save(ctx, append(users, usr))
	repo.mirror(usr)
	return usr, nil
}

// Update replaces the stored user having usr.ID.
func (repo *Repository) Update(ctx context.Context, usr User) (User, error) {
	usr = clean(usr)
	if err := core.CheckStruct(usr); err != nil {
		return User{}, err
	}

	users := repo.coll.Load(ctx)
	idx := indexOf(users, usr.ID)
	if idx < 0 {
		return User{}, ErrNotFound
	}
	if err := checkUnique(users, usr); err != nil {
		return User{}, err
	}

	users[idx] = usr
	repo.coll.Save(ctx, users)
	repo.mirror(usr)
	return usr, nil
}

func (repo *Repository) Delete(ctx context.Context, id string) error {
	users := repo.coll.Load(ctx)
	idx := indexOf(users, id)
	if idx < 0 {
		return ErrNotFound
	}

	repo.coll.Save(ctx, append(users[:idx:idx], users[idx+1:]...))
	repo.outbox.Delete(Collection, id)
	return nil
}

// Enroll adds courseID to the user's enrolled courses. Enrolling twice is a no-op.
func (repo *Repository) Enroll(ctx context.Context, userID, courseID string) (User, error) {
	users := repo.coll.Load(ctx)
	idx := indexOf(users, userID)
	if idx < 0 {
		return User{}, ErrNotFound
	}

	usr := users[idx]
	if usr.IsEnrolled(courseID) {
		return usr, nil
	}
	courses := make([]string, 0, len(usr.EnrolledCourses)+1)
	usr.EnrolledCourses = append(append(courses, usr.EnrolledCourses...), courseID)

	users[idx] = usr
	repo.coll.Save(ctx, users)
	repo.mirror(usr)
	return usr, nil
}

// SetBillingStatus pauses, cancels or resumes the user's subscription.
func (repo *Repository) SetBillingStatus(ctx context.Context, userID string, status BillingStatus) (User, error) {
	usr, err := repo.FindByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	usr.Billing.Status = status
	return repo.Update(ctx, usr)
}

// Authenticate verifies the password of the user having email.
func (repo *Repository) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !usr.HasPassword() || usr.CheckPassword(pwd) != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

// SyncExternalIdentity returns the local user matching the identity's email,
// refreshing its avatar, or creates a student for a first sign-in.
// Repeated calls with the same identity return the same user.
func (repo *Repository) SyncExternalIdentity(ctx context.Context, ev core.IdentityEvent) (User, error) {
	email := core.CleanString(ev.Email, true /* lower */)
	if email == "" {
		return User{}, core.NewValidationError(errors.New("identity has no email"), core.FieldError{Field: "email", Error: "this field is required"})
	}

	users := repo.coll.Load(ctx)
	if idx := indexOfEmail(users, email); idx >= 0 {
		usr := users[idx]
		if ev.PhotoURL != "" && ev.PhotoURL != usr.Avatar {
			usr.Avatar = ev.PhotoURL
			users[idx] = usr
			repo.coll.Save(ctx, users)
			repo.mirror(usr)
		}
		return usr, nil
	}

	name := core.CleanString(ev.DisplayName)
	if name == "" {
		name = defaultExternalName
	}
	avatar := ev.PhotoURL
	if avatar == "" {
		avatar = DefaultAvatar(name)
	}
	id := ev.ExternalID
	if id == "" || indexOf(users, id) >= 0 {
		id = uuid.NewString()
	}
	return repo.Add(ctx, User{
		ID:              id,
		Name:            name,
		Role:            RoleStudent,
		Avatar:          avatar,
		Email:           email,
		EnrolledCourses: make([]string, 0),
		Billing:         DefaultBilling(),
	})
}
