package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/tests"
)

func newRepo(t *testing.T, seed ...User) (*Repository, *testutil.Outbox) {
	t.Helper()
	store, _, _ := testutil.NewStore(t)
	outbox := new(testutil.Outbox)
	return NewRepository(store, outbox, seed), outbox
}

func student(id, email string) User {
	return User{ID: id, Name: "Harry P.", Role: RoleStudent, Email: email}
}

func TestRepository_Add(t *testing.T) {
	ctx := context.Background()
	repo, outbox := newRepo(t, student("u3", "harry@hogwarts.edu"))

	tests := []struct {
		name      string
		usr       User
		wantField string
	}{
		{name: "valid", usr: User{Name: " Luna L. ", Role: RoleStudent, Email: "Luna@Hogwarts.edu"}},
		{name: "duplicate email ignores case", usr: student("", "HARRY@hogwarts.edu"), wantField: "email"},
		{name: "invalid role", usr: User{Name: "Dobby", Role: "elf", Email: "dobby@hogwarts.edu"}, wantField: "role"},
		{name: "missing name", usr: User{Role: RoleTeacher, Email: "who@hogwarts.edu"}, wantField: "name"},
		{name: "invalid card", usr: User{Name: "Ron W.", Role: RoleStudent, Email: "ron@hogwarts.edu", Billing: Billing{SavedCardLast4: "42"}}, wantField: "savedCardLast4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := repo.Add(ctx, tt.usr)
			if tt.wantField != "" {
				fields, ok := core.FieldErrors(err)
				require.True(t, ok, "want a validation error, got %v", err)
				require.NotEmpty(t, fields)
				assert.Equal(t, tt.wantField, fields[0].Field)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, usr.ID)
			assert.Equal(t, "Luna L.", usr.Name)
			assert.Equal(t, "luna@hogwarts.edu", usr.Email)
			assert.Equal(t, []string{}, usr.EnrolledCourses)
			assert.Equal(t, BillingActive, usr.Billing.Status)
		})
	}

	users := repo.GetAll(ctx)
	require.Len(t, users, 2)
	assert.Equal(t, "u3", users[0].ID, "users are appended")

	calls := outbox.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, Collection, calls[0].Collection)
}

func TestRepository_MirrorHasNoCredentials(t *testing.T) {
	ctx := context.Background()
	repo, outbox := newRepo(t)

	usr := student("", "harry@hogwarts.edu")
	require.NoError(t, usr.SetPassword("Gryffindor#7"))
	usr, err := repo.Add(ctx, usr)
	require.NoError(t, err)
	assert.True(t, usr.HasPassword())

	mirrored := outbox.Calls()[0].Entity.(User)
	assert.Empty(t, mirrored.PasswordHash)

	stored, err := repo.FindByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.NoError(t, stored.CheckPassword("Gryffindor#7"))
}

func TestRepository_FindByEmail(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, student("u3", "harry@hogwarts.edu"))

	for _, email := range []string{"harry@hogwarts.edu", "Harry@Hogwarts.EDU", "  harry@hogwarts.edu "} {
		usr, err := repo.FindByEmail(ctx, email)
		require.NoError(t, err, email)
		assert.Equal(t, "u3", usr.ID)
	}
	_, err := repo.FindByEmail(ctx, "voldemort@hogwarts.edu")
	assert.Equal(t, ErrNotFound, err)
}

func TestRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo, outbox := newRepo(t, student("u3", "harry@hogwarts.edu"), User{ID: "u2", Name: "Prof. Snape", Role: RoleTeacher, Email: "snape@lumina.com"})

	usr, err := repo.FindByID(ctx, "u3")
	require.NoError(t, err)
	usr.Name = "Harry Potter"
	updated, err := repo.Update(ctx, usr)
	require.NoError(t, err)
	assert.Equal(t, "Harry Potter", updated.Name)

	usr.Email = "SNAPE@lumina.com"
	_, err = repo.Update(ctx, usr)
	_, isValidation := core.FieldErrors(err)
	assert.True(t, isValidation)

	_, err = repo.Update(ctx, student("nope", "nope@hogwarts.edu"))
	assert.Equal(t, ErrNotFound, err)

	assert.Len(t, outbox.Calls(), 1)
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo, outbox := newRepo(t, student("u3", "harry@hogwarts.edu"), student("u4", "ron@hogwarts.edu"))

	require.NoError(t, repo.Delete(ctx, "u3"))
	users := repo.GetAll(ctx)
	require.Len(t, users, 1)
	assert.Equal(t, "u4", users[0].ID)
	assert.Equal(t, ErrNotFound, repo.Delete(ctx, "u3"))

	calls := outbox.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, testutil.OutboxCall{Op: "delete", Collection: Collection, ID: "u3"}, calls[0])
}

func TestRepository_Enroll(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, student("u3", "harry@hogwarts.edu"))

	once, err := repo.Enroll(ctx, "u3", "c1")
	require.NoError(t, err)
	twice, err := repo.Enroll(ctx, "u3", "c1")
	require.NoError(t, err)

	assert.Equal(t, []string{"c1"}, once.EnrolledCourses)
	assert.Equal(t, once.EnrolledCourses, twice.EnrolledCourses)

	stored, _ := repo.FindByID(ctx, "u3")
	assert.Equal(t, []string{"c1"}, stored.EnrolledCourses)

	_, err = repo.Enroll(ctx, "ghost", "c1")
	assert.Equal(t, ErrNotFound, err)
}

func TestRepository_SyncExternalIdentity(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, User{ID: "u3", Name: "Harry P.", Role: RoleStudent, Email: "harry@hogwarts.edu", Avatar: "old.png", EnrolledCourses: []string{"c1"}})

	t.Run("new identity", func(t *testing.T) {
		ev := core.IdentityEvent{Email: "Hermione@Hogwarts.edu", ExternalID: "ext-1"}
		first, err := repo.SyncExternalIdentity(ctx, ev)
		require.NoError(t, err)
		second, err := repo.SyncExternalIdentity(ctx, ev)
		require.NoError(t, err)

		assert.Equal(t, "ext-1", first.ID)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "hermione@hogwarts.edu", first.Email)
		assert.Equal(t, "Lumina Student", first.Name)
		assert.Equal(t, RoleStudent, first.Role)
		assert.Equal(t, []string{}, first.EnrolledCourses)
		assert.Equal(t, DefaultBilling(), first.Billing)
		assert.Contains(t, first.Avatar, "ui-avatars.com")
		assert.Len(t, repo.GetAll(ctx), 2)
	})

	t.Run("existing user refreshes avatar", func(t *testing.T) {
		usr, err := repo.SyncExternalIdentity(ctx, core.IdentityEvent{Email: "HARRY@hogwarts.edu", DisplayName: "Someone Else", PhotoURL: "new.png", ExternalID: "ext-2"})
		require.NoError(t, err)
		assert.Equal(t, "u3", usr.ID)
		assert.Equal(t, "Harry P.", usr.Name)
		assert.Equal(t, "new.png", usr.Avatar)
		assert.Equal(t, []string{"c1"}, usr.EnrolledCourses)

		stored, _ := repo.FindByID(ctx, "u3")
		assert.Equal(t, "new.png", stored.Avatar)
	})

	t.Run("no email", func(t *testing.T) {
		_, err := repo.SyncExternalIdentity(ctx, core.IdentityEvent{ExternalID: "ext-3"})
		assert.Error(t, err)
	})
}

func TestRepository_Authenticate(t *testing.T) {
	ctx := context.Background()
	usr := student("u3", "harry@hogwarts.edu")
	require.NoError(t, usr.SetPassword("Gryffindor#7"))
	repo, _ := newRepo(t, usr, student("u4", "ron@hogwarts.edu"))

	got, err := repo.Authenticate(ctx, "Harry@hogwarts.edu", "Gryffindor#7")
	require.NoError(t, err)
	assert.Equal(t, "u3", got.ID)

	for _, tt := range []struct{ email, pwd string }{
		{"harry@hogwarts.edu", "wrong"},
		{"ron@hogwarts.edu", ""}, // no password set
		{"ghost@hogwarts.edu", "Gryffindor#7"},
	} {
		_, err := repo.Authenticate(ctx, tt.email, tt.pwd)
		assert.Equal(t, ErrInvalidCredentials, err, tt.email)
	}
}

func TestRepository_SetBillingStatus(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, student("u3", "harry@hogwarts.edu"))

	usr, err := repo.SetBillingStatus(ctx, "u3", BillingPaused)
	require.NoError(t, err)
	assert.Equal(t, BillingPaused, usr.Billing.Status)
}

func TestNewUser_Validate(t *testing.T) {
	tests := []struct {
		name    string
		pwd     string
		wantErr string
	}{
		{name: "too short", pwd: "Ab1!", wantErr: pwdMinLenText},
		{name: "whitespace", pwd: "Abcd 123!", wantErr: pwdNoSpaceText},
		{name: "numeric", pwd: "12345678", wantErr: pwdNotAllNumText},
		{name: "no complexity", pwd: "abcdefgh1", wantErr: pwdComplexityText},
		{name: "similar to name", pwd: "Hermione1!", wantErr: pwdAttrSimText},
		{name: "common", pwd: "P@ssw0rd1", wantErr: pwdNoCommonText},
		{name: "valid", pwd: "Wing4rdium-L"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := NewUser{Name: "Hermione", Email: "hermione@hogwarts.edu", Role: RoleStudent, Password: tt.pwd, PasswordConfirm: tt.pwd}
			err := nu.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			fields, ok := core.FieldErrors(err)
			require.True(t, ok, "want a validation error, got %v", err)
			require.Len(t, fields, 1)
			assert.Equal(t, "password", fields[0].Field)
			assert.Equal(t, tt.wantErr, fields[0].Error)
		})
	}
}
