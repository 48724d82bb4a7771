package user

import (
	"fmt"
	"net/url"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/owais185-web/LuminaLMSPush/core"
)

type Role string

// Roles
const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

var AllRoles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type BillingStatus string

const (
	BillingActive    BillingStatus = "active"
	BillingPaused    BillingStatus = "paused"
	BillingCancelled BillingStatus = "cancelled"
)

type Billing struct {
	AutoPaymentEnabled bool          `json:"autoPaymentEnabled"`
	SavedCardLast4     string        `json:"savedCardLast4,omitempty" validate:"omitempty,cardlast4"`
	SubscriptionEnd    null.Time     `json:"subscriptionEnd"`
	Status             BillingStatus `json:"status,omitempty" validate:"omitempty,oneof=active paused cancelled"`
}

func DefaultBilling() Billing {
	return Billing{AutoPaymentEnabled: false, Status: BillingActive}
}

type User struct {
	ID              string   `json:"id"`
	Name            string   `json:"name" validate:"required"`
	Role            Role     `json:"role" validate:"required,role"`
	Avatar          string   `json:"avatar"`
	Email           string   `json:"email" validate:"required,email"`
	PasswordHash    []byte   `json:"passwordHash,omitempty"`
	EnrolledCourses []string `json:"enrolledCourses"`
	Billing         Billing  `json:"billing"`
}

var _ core.Actor = User{}

func (u User) ActorInfo() (id, name, email string) { return u.ID, u.Name, u.Email }

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) HasPassword() bool { return len(u.PasswordHash) > 0 }

func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsStudent() bool { return u.Role == RoleStudent }

func (u User) IsEnrolled(courseID string) bool {
	for _, id := range u.EnrolledCourses {
		if id == courseID {
			return true
		}
	}
	return false
}

// Public returns a copy without credentials, fit for leaving the local store.
func (u User) Public() User {
	u.PasswordHash = nil
	u.EnrolledCourses = append([]string{}, u.EnrolledCourses...)
	return u
}

// DefaultAvatar returns a generated avatar URL for name.
func DefaultAvatar(name string) string {
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=random", url.QueryEscape(name))
}

// NewUser contains information needed to create a new User with a password.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Role            Role   `json:"role" validate:"required,role"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate() error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return core.CheckStruct(nu)
}

// ResetUserPassword holds a new password for an existing User.
type ResetUserPassword struct {
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`

	usr User
}

func NewResetUserPassword(usr User, pwd, confirm string) ResetUserPassword {
	return ResetUserPassword{Password: pwd, PasswordConfirm: confirm, usr: usr}
}

func (rp ResetUserPassword) Validate() error { return core.CheckStruct(rp) }
