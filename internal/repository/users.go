package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"flightshots/internal/kvstore"
	"flightshots/internal/leveling"
	"flightshots/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var ErrUserNotFound = errors.New("user not found")

// Result messages, resolved through i18n by the handlers.
const (
	MsgRegistered       = "auth.registered"
	MsgUsernameTaken    = "auth.username_taken"
	MsgEmailTaken       = "auth.email_taken"
	MsgBadCredentials   = "auth.bad_credentials"
	MsgBanned           = "auth.banned"
	MsgLoggedIn         = "auth.logged_in"
	MsgForbidden        = "auth.forbidden"
	MsgReviewerCreated  = "admin.reviewer_created"
	MsgSetupDone        = "auth.setup_done"
	MsgSetupClosed      = "auth.setup_closed"
	MsgMissingFields    = "form.missing_fields"
	MsgPasswordTooShort = "form.password_too_short"
	MsgInvalidEmail     = "form.invalid_email"
)

type Activity int

const (
	ActivityUpload Activity = iota
	ActivityLikeReceived
	ActivityComment
	ActivityDownload
)

// UserRepository owns the user collection and the sessions built on it.
// Both are loaded once and rewritten in full on every change.
type UserRepository struct {
	mu         sync.Mutex
	kv         *kvstore.Store
	log        logrus.FieldLogger
	users      []models.User
	sessions   map[string]models.Session
	sessionTTL time.Duration
	hashCost   int
	now        func() time.Time
}

func NewUserRepository(ctx context.Context, kv *kvstore.Store, log logrus.FieldLogger, sessionTTL time.Duration) *UserRepository {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	r := &UserRepository{
		kv:         kv,
		log:        repoLogger(log, "users"),
		sessionTTL: sessionTTL,
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
	}
	r.users = kvstore.Read(ctx, kv, kvstore.KeyUsers, []models.User{})
	r.sessions = kvstore.Read(ctx, kv, kvstore.KeySessions, map[string]models.Session{})
	if r.sessions == nil {
		r.sessions = map[string]models.Session{}
	}
	return r
}

func (r *UserRepository) saveUsers(ctx context.Context, users []models.User) {
	r.users = users
	kvstore.Write(ctx, r.kv, kvstore.KeyUsers, users)
}

func (r *UserRepository) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), r.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (r *UserRepository) indexOf(id string) int {
	for i := range r.users {
		if r.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *UserRepository) usernameTaken(username, exceptID string) bool {
	for _, u := range r.users {
		if u.Username == username && u.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *UserRepository) emailTaken(email, exceptID string) bool {
	for _, u := range r.users {
		if u.Email == email && u.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *UserRepository) newUser(username, email, password string, role models.Role, exp int) (models.User, error) {
	hash, err := r.hash(password)
	if err != nil {
		return models.User{}, err
	}
	return models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       models.UserActive,
		Level:        leveling.LevelForExp(exp),
		Exp:          exp,
		CreatedAt:    r.now().UTC(),
	}, nil
}

func validateCredentials(username, email, password string) (models.Result, bool) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || password == "" {
		return models.Fail(MsgMissingFields), false
	}
	if !strings.Contains(email, "@") {
		return models.Fail(MsgInvalidEmail), false
	}
	if len(password) < 6 {
		return models.Fail(MsgPasswordTooShort), false
	}
	return models.Result{}, true
}

func (r *UserRepository) Register(ctx context.Context, username, email, password string) models.Result {
	if res, ok := validateCredentials(username, email, password); !ok {
		return res
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.usernameTaken(username, "") {
		return models.Fail(MsgUsernameTaken)
	}
	if r.emailTaken(email, "") {
		return models.Fail(MsgEmailTaken)
	}

	u, err := r.newUser(username, email, password, models.RoleUser, 0)
	if err != nil {
		r.log.WithError(err).Error("register")
		return models.Fail(MsgMissingFields)
	}

	next := append(append([]models.User(nil), r.users...), u)
	r.saveUsers(ctx, next)
	r.log.WithField("user_id", u.ID).Info("user registered")
	return models.Ok(MsgRegistered)
}

// Setup creates the first administrator. It only works on an empty user collection.
func (r *UserRepository) Setup(ctx context.Context, username, email, password string) models.Result {
	if res, ok := validateCredentials(username, email, password); !ok {
		return res
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.users) > 0 {
		return models.Fail(MsgSetupClosed)
	}

	u, err := r.newUser(username, email, password, models.RoleAdmin, 10000)
	if err != nil {
		r.log.WithError(err).Error("setup")
		return models.Fail(MsgMissingFields)
	}
	r.saveUsers(ctx, []models.User{u})
	r.log.WithField("user_id", u.ID).Info("administrator created")
	return models.Ok(MsgSetupDone)
}

func (r *UserRepository) RegisterReviewer(ctx context.Context, username, email, password, adminID string) models.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(adminID)
	if i < 0 || r.users[i].Role != models.RoleAdmin {
		return models.Fail(MsgForbidden)
	}
	if res, ok := validateCredentials(username, email, password); !ok {
		return res
	}
	if r.usernameTaken(username, "") {
		return models.Fail(MsgUsernameTaken)
	}

	u, err := r.newUser(username, email, password, models.RoleReviewer, 1000)
	if err != nil {
		r.log.WithError(err).Error("register reviewer")
		return models.Fail(MsgMissingFields)
	}

	next := append(append([]models.User(nil), r.users...), u)
	r.saveUsers(ctx, next)
	r.log.WithFields(logrus.Fields{"user_id": u.ID, "admin_id": adminID}).Info("reviewer registered")
	return models.Ok(MsgReviewerCreated)
}

// Login checks credentials, stamps the last-login time and opens a session.
// The first login of a calendar day (UTC) earns the daily bonus.
func (r *UserRepository) Login(ctx context.Context, username, password string) (models.Result, *models.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := -1
	for j := range r.users {
		if r.users[j].Username == username {
			i = j
			break
		}
	}
	if i < 0 {
		return models.Fail(MsgBadCredentials), nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(r.users[i].PasswordHash), []byte(password)); err != nil {
		return models.Fail(MsgBadCredentials), nil
	}
	if r.users[i].Status == models.UserBanned {
		return models.Fail(MsgBanned), nil
	}

	now := r.now().UTC()
	next := append([]models.User(nil), r.users...)
	u := next[i]
	if u.LastLoginAt == nil || !sameDay(*u.LastLoginAt, now) {
		u.Exp += leveling.RewardDailyLogin
		u.Level = leveling.LevelForExp(u.Exp)
	}
	u.LastLoginAt = &now
	next[i] = u
	r.saveUsers(ctx, next)

	s := models.Session{
		ID:        uuid.NewString(),
		User:      u,
		CreatedAt: now,
		ExpiresAt: now.Add(r.sessionTTL),
	}
	r.putSession(ctx, s)
	return models.Ok(MsgLoggedIn), &s
}

func sameDay(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// mutate applies fn to a copy of the user and persists the result. Every
// session of the user gets the same updated snapshot.
func (r *UserRepository) mutate(ctx context.Context, id string, fn func(*models.User) error) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.User{}, ErrUserNotFound
	}
	u := r.users[i]
	if err := fn(&u); err != nil {
		return models.User{}, err
	}

	next := append([]models.User(nil), r.users...)
	next[i] = u
	r.saveUsers(ctx, next)
	r.refreshSessions(ctx, u)
	return u, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (models.User, error) {
	if err := patch.Validate(); err != nil {
		return models.User{}, err
	}

	var hash string
	if patch.Password != nil {
		h, err := r.hash(*patch.Password)
		if err != nil {
			return models.User{}, err
		}
		hash = h
	}

	return r.mutate(ctx, id, func(u *models.User) error {
		if patch.Username != nil && *patch.Username != u.Username {
			if r.usernameTaken(*patch.Username, u.ID) {
				return fmt.Errorf("%w: %s", models.ErrInvalidPatch, MsgUsernameTaken)
			}
			u.Username = *patch.Username
		}
		if patch.Email != nil && *patch.Email != u.Email {
			if r.emailTaken(*patch.Email, u.ID) {
				return fmt.Errorf("%w: %s", models.ErrInvalidPatch, MsgEmailTaken)
			}
			u.Email = *patch.Email
		}
		if patch.Password != nil {
			u.PasswordHash = hash
		}
		if patch.Avatar != nil {
			u.Avatar = *patch.Avatar
		}
		if patch.Bio != nil {
			u.Bio = *patch.Bio
		}
		return nil
	})
}

// AddExp adds amount to the user's exp and recomputes the level from it.
func (r *UserRepository) AddExp(ctx context.Context, id string, amount int) (models.User, error) {
	before := 0
	u, err := r.mutate(ctx, id, func(u *models.User) error {
		before = u.Level
		u.Exp += amount
		if u.Exp < 0 {
			u.Exp = 0
		}
		u.Level = leveling.LevelForExp(u.Exp)
		return nil
	})
	if err == nil && u.Level > before {
		r.log.WithFields(logrus.Fields{"user_id": id, "level": u.Level}).Info("level up")
	}
	return u, err
}

func (r *UserRepository) RecordActivity(ctx context.Context, id string, a Activity) error {
	_, err := r.mutate(ctx, id, func(u *models.User) error {
		switch a {
		case ActivityUpload:
			u.UploadCount++
		case ActivityLikeReceived:
			u.LikeCount++
		case ActivityComment:
			u.CommentCount++
		case ActivityDownload:
			u.DownloadCount++
		}
		return nil
	})
	return err
}

func (r *UserRepository) ToggleBan(ctx context.Context, id string) (models.User, error) {
	return r.mutate(ctx, id, func(u *models.User) error {
		if u.Status == models.UserActive {
			u.Status = models.UserBanned
		} else {
			u.Status = models.UserActive
		}
		return nil
	})
}

// DeleteUser removes the user and their sessions. Photos and comments they
// authored stay, with their denormalized display fields.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrUserNotFound
	}
	next := make([]models.User, 0, len(r.users)-1)
	next = append(next, r.users[:i]...)
	next = append(next, r.users[i+1:]...)
	r.saveUsers(ctx, next)
	r.dropSessionsOf(ctx, id)
	return nil
}

func (r *UserRepository) GetByID(id string) (models.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(id); i >= 0 {
		return r.users[i], true
	}
	return models.User{}, false
}

// List returns users whose username or email contains query, case-insensitively.
func (r *UserRepository) List(query string) []models.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := strings.ToLower(query)
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		if q == "" || strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, u)
		}
	}
	return out
}

func (r *UserRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *UserRepository) Stats() models.UserStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s models.UserStats
	for _, u := range r.users {
		switch u.Role {
		case models.RoleAdmin:
			s.Admins++
		case models.RoleReviewer:
			s.Reviewers++
		default:
			s.Members++
		}
		if u.Status == models.UserBanned {
			s.Banned++
		}
	}
	return s
}

// Clear wipes every user and session.
func (r *UserRepository) Clear(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = []models.User{}
	r.sessions = map[string]models.Session{}
	kvstore.Remove(ctx, r.kv, kvstore.KeyUsers)
	kvstore.Remove(ctx, r.kv, kvstore.KeySessions)
}
