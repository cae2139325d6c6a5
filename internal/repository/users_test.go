package repository

import (
	"context"
	"testing"
	"time"

	"flightshots/internal/kvstore"
	"flightshots/internal/leveling"
	"flightshots/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore() *kvstore.Store {
	return kvstore.New(kvstore.NewMemory(), "test-", nil)
}

func newTestUsers(t *testing.T, kv *kvstore.Store) *UserRepository {
	t.Helper()
	r := NewUserRepository(context.Background(), kv, nil, time.Hour)
	r.hashCost = bcrypt.MinCost
	return r
}

func mustRegister(t *testing.T, r *UserRepository, username string) models.User {
	t.Helper()
	res := r.Register(context.Background(), username, username+"@example.com", "secret1")
	require.True(t, res.Success, res.Message)
	for _, u := range r.List(username) {
		if u.Username == username {
			return u
		}
	}
	t.Fatalf("user %s not found after register", username)
	return models.User{}
}

func TestRegisterCreatesMember(t *testing.T) {
	r := newTestUsers(t, newTestStore())
	u := mustRegister(t, r, "alice")

	assert.Equal(t, models.RoleUser, u.Role)
	assert.Equal(t, models.UserActive, u.Status)
	assert.Equal(t, 1, u.Level)
	assert.Equal(t, 0, u.Exp)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.NotEmpty(t, u.ID)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	r := newTestUsers(t, newTestStore())
	mustRegister(t, r, "alice")

	res := r.Register(ctx, "alice", "other@example.com", "secret1")
	assert.Equal(t, models.Fail(MsgUsernameTaken), res)

	res = r.Register(ctx, "bob", "alice@example.com", "secret1")
	assert.Equal(t, models.Fail(MsgEmailTaken), res)

	// username is checked before email
	res = r.Register(ctx, "alice", "alice@example.com", "secret1")
	assert.Equal(t, MsgUsernameTaken, res.Message)
	assert.Equal(t, 1, r.Count())
}

func TestRegisterValidatesInput(t *testing.T) {
	ctx := context.Background()
	r := newTestUsers(t, newTestStore())

	assert.Equal(t, MsgMissingFields, r.Register(ctx, " ", "a@b.c", "secret1").Message)
	assert.Equal(t, MsgInvalidEmail, r.Register(ctx, "a", "nope", "secret1").Message)
	assert.Equal(t, MsgPasswordTooShort, r.Register(ctx, "a", "a@b.c", "123").Message)
	assert.Zero(t, r.Count())
}

func TestLoginFlow(t *testing.T) {
	ctx := context.Background()
	r := newTestUsers(t, newTestStore())
	u := mustRegister(t, r, "alice")

	res, s := r.Login(ctx, "alice", "wrong")
	assert.Equal(t, models.Fail(MsgBadCredentials), res)
	assert.Nil(t, s)

	res, s = r.Login(ctx, "nobody", "secret1")
	assert.Equal(t, MsgBadCredentials, res.Message)
	assert.Nil(t, s)

	res, s = r.Login(ctx, "alice", "secret1")
	require.True(t, res.Success)
	require.NotNil(t, s)
	assert.Equal(t, u.ID, s.User.ID)
	assert.NotNil(t, s.User.LastLoginAt)

	got, ok := r.Session(s.ID)
	require.True(t, ok)
	assert.Equal(t, u.ID, got.User.ID)

	r.Logout(ctx, s.ID)
	_, ok = r.Session(s.ID)
	assert.False(t, ok)
}

func TestLoginBannedUser(t *testing.T) {
	ctx := context.Background()
	r := newTestUsers(t, newTestStore())
	u := mustRegister(t, r, "alice")
	_, err := r.ToggleBan(ctx, u.ID)
	require.NoError(t, err)

	res, s := r.Login(ctx, "alice", "secret1")
	assert.Equal(t, models.Fail(MsgBanned), res)
	assert.Nil(t, s)

	res, _ = r.Login(ctx, "alice", "bad")
	assert.Equal(t, MsgBadCredentials, res.Message)
}

func TestDailyLoginBonusOncePerDay(t *testing.T) {
	ctx := context.Background()
	r := newTestUsers(t, newTestStore())
	day := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return day }
	u := mustRegister(t, r, "alice")

	_, _ = r.Login(ctx, "alice", "secret1")
	_, _ = r.Login(ctx, "alice", "secret1")
	got, _ := r.GetByID(u.ID)
	assert.Equal(t, leveling.RewardDailyLogin, got.Exp)

	day = day.Add(24 * time.Hour)
	_, _ = r.Login(ctx, "alice", "secret1")
	got, _ = r.GetByID(u.ID)
	assert.Equal(t, 2*leveling.RewardDailyLogin, got.Exp)
}

func TestAddExpRecomputesLevel(t *testing.T) {
	ctx := context.Background()
	r := newTestUsers(t, newTestStore())
	u := mustRegister(t, r, "alice")

	got, err := r.AddExp(ctx, u.ID, 95)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Level)

	got, err = r.AddExp(ctx, u.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 105, got.Exp)
	assert.Equal(t, 2, got.Level)

	_, err = r.AddExp(ctx, "missing", 10)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMutationsRefreshSessions(t *testing.T) {
	ctx := context.Background()
	r := newTestUsers(t, newTestStore())
	u := mustRegister(t, r, "alice")
	_, s := r.Login(ctx, "alice", "secret1")
	require.NotNil(t, s)

	bio := "747 enthusiast"
	_, err := r.UpdateUser(ctx, u.ID, models.UserPatch{Bio: &bio})
	require.NoError(t, err)

	got, ok := r.Session(s.ID)
	require.True(t, ok)
	assert.Equal(t, bio, got.User.Bio)
}

func TestUpdateUserUniqueness(t *testing.T) {
	ctx := context.Background()
	r := newTestUsers(t, newTestStore())
	alice := mustRegister(t, r, "alice")
	mustRegister(t, r, "bob")

	name := "bob"
	_, err := r.UpdateUser(ctx, alice.ID, models.UserPatch{Username: &name})
	assert.ErrorIs(t, err, models.ErrInvalidPatch)

	same := "alice"
	_, err = r.UpdateUser(ctx, alice.ID, models.UserPatch{Username: &same})
	assert.NoError(t, err)

	pw := "newpassword"
	_, err = r.UpdateUser(ctx, alice.ID, models.UserPatch{Password: &pw})
	require.NoError(t, err)
	res, _ := r.Login(ctx, "alice", pw)
	assert.True(t, res.Success)
}

func TestRegisterReviewerRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	r := newTestUsers(t, newTestStore())
	require.True(t, r.Setup(ctx, "root", "root@example.com", "secret1").Success)
	admin := r.List("root")[0]
	member := mustRegister(t, r, "alice")

	res := r.RegisterReviewer(ctx, "rev", "rev@example.com", "secret1", member.ID)
	assert.Equal(t, models.Fail(MsgForbidden), res)

	res = r.RegisterReviewer(ctx, "alice", "x@example.com", "secret1", admin.ID)
	assert.Equal(t, models.Fail(MsgUsernameTaken), res)

	res = r.RegisterReviewer(ctx, "rev", "rev@example.com", "secret1", admin.ID)
	require.True(t, res.Success)
	rev := r.List("rev")[0]
	assert.Equal(t, models.RoleReviewer, rev.Role)
	assert.Equal(t, 1000, rev.Exp)
	assert.Equal(t, 5, rev.Level)
}

func TestSetupOnlyOnEmptyStore(t *testing.T) {
	ctx := context.Background()
	r := newTestUsers(t, newTestStore())

	res := r.Setup(ctx, "root", "root@example.com", "secret1")
	require.True(t, res.Success)
	admin := r.List("")[0]
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, 10, admin.Level)

	res = r.Setup(ctx, "root2", "root2@example.com", "secret1")
	assert.Equal(t, models.Fail(MsgSetupClosed), res)
}

func TestDeleteUserDropsSessions(t *testing.T) {
	ctx := context.Background()
	r := newTestUsers(t, newTestStore())
	u := mustRegister(t, r, "alice")
	_, s := r.Login(ctx, "alice", "secret1")
	require.NotNil(t, s)

	require.NoError(t, r.DeleteUser(ctx, u.ID))
	_, ok := r.Session(s.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, r.DeleteUser(ctx, u.ID), ErrUserNotFound)
}

func TestPurgeExpiredSessions(t *testing.T) {
	ctx := context.Background()
	r := newTestUsers(t, newTestStore())
	mustRegister(t, r, "alice")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return start }
	_, s := r.Login(ctx, "alice", "secret1")
	require.NotNil(t, s)

	assert.Equal(t, 0, r.PurgeExpiredSessions(ctx, start.Add(30*time.Minute)))
	assert.Equal(t, 1, r.PurgeExpiredSessions(ctx, start.Add(2*time.Hour)))
}

func TestUsersPersistAcrossReload(t *testing.T) {
	ctx := context.Background()
	kv := newTestStore()
	r := newTestUsers(t, kv)
	u := mustRegister(t, r, "alice")
	_, s := r.Login(ctx, "alice", "secret1")
	require.NotNil(t, s)

	reloaded := newTestUsers(t, kv)
	got, ok := reloaded.GetByID(u.ID)
	require.True(t, ok)
	assert.Equal(t, "alice", got.Username)
	_, ok = reloaded.Session(s.ID)
	assert.True(t, ok)
}

func TestRecordActivityAndStats(t *testing.T) {
	ctx := context.Background()
	r := newTestUsers(t, newTestStore())
	require.True(t, r.Setup(ctx, "root", "root@example.com", "secret1").Success)
	u := mustRegister(t, r, "alice")
	mustRegister(t, r, "bob")

	require.NoError(t, r.RecordActivity(ctx, u.ID, ActivityUpload))
	require.NoError(t, r.RecordActivity(ctx, u.ID, ActivityComment))
	got, _ := r.GetByID(u.ID)
	assert.Equal(t, 1, got.UploadCount)
	assert.Equal(t, 1, got.CommentCount)

	_, err := r.ToggleBan(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStats{Members: 2, Admins: 1, Banned: 1}, r.Stats())
}
