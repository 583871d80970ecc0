package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"avtosalon/config"
	"avtosalon/internal/entity"
	"avtosalon/internal/repository"
	"avtosalon/internal/utils"
)

type sentMail struct {
	To       string
	Username string
	Code     int
}

type fakeMailSender struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (f *fakeMailSender) SendVerificationCode(_ context.Context, to, username string, code int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("relay unavailable")
	}
	f.sent = append(f.sent, sentMail{To: to, Username: username, Code: code})
	return nil
}

func (f *fakeMailSender) last(t *testing.T) sentMail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

type authFixture struct {
	db      *gorm.DB
	users   repository.UserRepository
	mail    *fakeMailSender
	clock   *fakeClock
	service *AuthService
}

func newAuthFixture(t *testing.T, opts ...AuthOption) *authFixture {
	t.Helper()
	db := newTestDB(t)
	users := repository.NewUserRepository(db)
	mail := &fakeMailSender{}
	clock := &fakeClock{now: time.Now()}
	tokens := utils.TokenManager{
		AccessSecret:  []byte("test-access"),
		RefreshSecret: []byte("test-refresh"),
		Issuer:        "avtosalon-test",
	}
	svc := NewAuthService(
		users,
		repository.NewAuditLogRepository(db),
		mail,
		BcryptPasswordHasher{Cost: bcrypt.MinCost},
		tokens,
		clock,
		quietLogger(),
		opts...,
	)
	return &authFixture{db: db, users: users, mail: mail, clock: clock, service: svc}
}

func (f *authFixture) register(t *testing.T, username, email string) {
	t.Helper()
	_, err := f.service.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    email,
		Password: "secret123",
	})
	require.NoError(t, err)
}

func (f *authFixture) registerVerified(t *testing.T, username, email string) {
	t.Helper()
	f.register(t, username, email)
	code := f.mail.last(t).Code
	require.NoError(t, f.service.Verify(context.Background(), email, strconv.Itoa(code)))
}

func TestRegisterCreatesUnverifiedUserAndMailsCode(t *testing.T) {
	f := newAuthFixture(t)

	ttl, err := f.service.Register(context.Background(), RegisterInput{
		Username: "john",
		Email:    "  John@Example.COM ",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, ttl)

	mail := f.mail.last(t)
	assert.Equal(t, "john@example.com", mail.To)
	assert.Equal(t, "john", mail.Username)
	assert.GreaterOrEqual(t, mail.Code, 100000)
	assert.LessOrEqual(t, mail.Code, 999999)

	user, err := f.users.FindByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.False(t, user.IsVerified)
	assert.Equal(t, entity.UserRoleUser, user.Role)
	require.NotNil(t, user.VerificationCode)
	assert.Equal(t, mail.Code, *user.VerificationCode)
	require.NotNil(t, user.VerificationCodeExpiresAt)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "john", "john@example.com")

	_, err := f.service.Register(context.Background(), RegisterInput{
		Username: "other",
		Email:    "john@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = f.service.Register(context.Background(), RegisterInput{
		Username: "john",
		Email:    "new@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterMailFailureLeavesNoUser(t *testing.T) {
	f := newAuthFixture(t)
	f.mail.fail = true

	_, err := f.service.Register(context.Background(), RegisterInput{
		Username: "john",
		Email:    "john@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrMailNotSent)

	user, err := f.users.FindByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("correct code marks verified and clears it", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "john", "john@example.com")
		code := f.mail.last(t).Code

		require.NoError(t, f.service.Verify(ctx, "john@example.com", strconv.Itoa(code)))

		user, err := f.users.FindByEmail(ctx, "john@example.com")
		require.NoError(t, err)
		assert.True(t, user.IsVerified)
		assert.Nil(t, user.VerificationCode)
		assert.Nil(t, user.VerificationCodeExpiresAt)

		// re-verifying finds no code left
		err = f.service.Verify(ctx, "john@example.com", strconv.Itoa(code))
		assert.ErrorIs(t, err, ErrCodeExpired)
	})

	t.Run("wrong code leaves the stored code usable", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "john", "john@example.com")
		code := f.mail.last(t).Code
		wrong := 100000
		if wrong == code {
			wrong = 100001
		}

		err := f.service.Verify(ctx, "john@example.com", strconv.Itoa(wrong))
		assert.ErrorIs(t, err, ErrCodeMismatch)

		err = f.service.Verify(ctx, "john@example.com", "not-a-number")
		assert.ErrorIs(t, err, ErrCodeMismatch)

		require.NoError(t, f.service.Verify(ctx, "john@example.com", strconv.Itoa(code)))
	})

	t.Run("stamp past expiry rejects even before the sweep fires", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "john", "john@example.com")
		code := f.mail.last(t).Code

		f.clock.Advance(3 * time.Minute)
		err := f.service.Verify(ctx, "john@example.com", strconv.Itoa(code))
		assert.ErrorIs(t, err, ErrCodeExpired)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture(t)
		err := f.service.Verify(ctx, "nobody@example.com", "123456")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestExpirySweepClearsCode(t *testing.T) {
	f := newAuthFixture(t, WithCodeTTL(30*time.Millisecond))
	f.register(t, "john", "john@example.com")

	assert.Eventually(t, func() bool {
		user, err := f.users.FindByEmail(context.Background(), "john@example.com")
		return err == nil && user != nil && user.VerificationCode == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestExpirySweepSkipsVerifiedUser(t *testing.T) {
	f := newAuthFixture(t, WithCodeTTL(50*time.Millisecond))
	f.registerVerified(t, "john", "john@example.com")

	time.Sleep(150 * time.Millisecond)
	user, err := f.users.FindByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("verified user gets both tokens", func(t *testing.T) {
		f := newAuthFixture(t)
		f.registerVerified(t, "john", "john@example.com")

		result, err := f.service.Login(ctx, "John@Example.com", "secret123")
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.NotEqual(t, result.AccessToken, result.RefreshToken)
		assert.Equal(t, "john", result.User.Username)
	})

	t.Run("unverified user is told to verify", func(t *testing.T) {
		f := newAuthFixture(t)
		f.register(t, "john", "john@example.com")

		_, err := f.service.Login(ctx, "john@example.com", "secret123")
		assert.ErrorIs(t, err, ErrNotVerified)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		f := newAuthFixture(t)
		f.registerVerified(t, "john", "john@example.com")

		_, wrongPass := f.service.Login(ctx, "john@example.com", "wrong")
		_, unknown := f.service.Login(ctx, "nobody@example.com", "secret123")
		assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
		assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.registerVerified(t, "john", "john@example.com")

	login, err := f.service.Login(ctx, "john@example.com", "secret123")
	require.NoError(t, err)

	refreshed, err := f.service.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, login.User.ID, refreshed.User.ID)

	_, err = f.service.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	// an access token must not pass for a refresh token
	_, err = f.service.Refresh(ctx, login.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestAuthActionsAreAudited(t *testing.T) {
	f := newAuthFixture(t)
	f.registerVerified(t, "john", "john@example.com")
	_, err := f.service.Login(context.Background(), "john@example.com", "secret123")
	require.NoError(t, err)

	var actions []string
	require.NoError(t, f.db.Model(&entity.AuditLog{}).
		Where("status = ?", entity.AuditStatusSuccess).
		Order("created_at").
		Pluck("action", &actions).Error)
	assert.Equal(t, []string{
		string(entity.ActionRegister),
		string(entity.ActionVerify),
		string(entity.ActionLogin),
	}, actions)
}
