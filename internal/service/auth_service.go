package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"avtosalon/internal/entity"
	"avtosalon/internal/repository"
	"avtosalon/internal/utils"
)

// Compared against on the unknown-email login path so both credential
// failures cost one bcrypt round.
const dummyPasswordHash = "$2a$12$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

// AuthService owns the register / verify / login / logout lifecycle. It is
// the only component with real state-transition logic; everything else it
// touches is an injected collaborator.
type AuthService struct {
	users  repository.UserRepository
	audit  repository.AuditLogRepository
	mail   EmailSender
	hasher PasswordHasher
	tokens TokenIssuer
	clock  Clock
	log    *logrus.Logger

	codeTTL time.Duration
}

type AuthOption func(*AuthService)

func WithCodeTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) { s.codeTTL = ttl }
}

func NewAuthService(
	users repository.UserRepository,
	audit repository.AuditLogRepository,
	mail EmailSender,
	hasher PasswordHasher,
	tokens TokenIssuer,
	clock Clock,
	log *logrus.Logger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		users:   users,
		audit:   audit,
		mail:    mail,
		hasher:  hasher,
		tokens:  tokens,
		clock:   clock,
		log:     log,
		codeTTL: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginResult struct {
	User         *entity.User
	AccessToken  string
	AccessTTL    time.Duration
	RefreshToken string
	RefreshTTL   time.Duration
}

// Register creates an unverified user and mails its one-time code. The mail
// goes out before the record is created, so a relay failure leaves no
// partial user behind. The returned TTL is the convenience-cookie lifetime.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (time.Duration, error) {
	email := utils.NormalizeEmail(input.Email)

	existing, err := s.users.FindByEmailOrUsername(ctx, email, input.Username)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		err := ErrUsernameTaken
		if existing.Email == email {
			err = ErrEmailTaken
		}
		s.logAudit(ctx, nil, input.Username, email, entity.ActionRegister, entity.AuditStatusFailed, map[string]any{"reason": err.Error()})
		return 0, err
	}

	code, err := utils.GenerateVerificationCode()
	if err != nil {
		return 0, err
	}

	if s.mail != nil {
		if err := s.mail.SendVerificationCode(ctx, email, input.Username, code); err != nil {
			s.logAudit(ctx, nil, input.Username, email, entity.ActionRegister, entity.AuditStatusFailed, map[string]any{"reason": "mail send failed"})
			s.logger().WithError(err).WithField("email", email).Error("verification email failed")
			return 0, ErrMailNotSent
		}
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return 0, err
	}

	expiresAt := s.now().Add(s.codeTTL)
	user := &entity.User{
		Username:                  input.Username,
		Email:                     email,
		PasswordHash:              hash,
		Role:                      entity.UserRoleUser,
		VerificationCode:          &code,
		VerificationCodeExpiresAt: &expiresAt,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Two concurrent registrations can both pass the pre-check;
		// the unique index decides, and we re-read to name the loser.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if taken, findErr := s.users.FindByEmail(ctx, email); findErr == nil && taken != nil {
				return 0, ErrEmailTaken
			}
			return 0, ErrUsernameTaken
		}
		return 0, err
	}

	s.scheduleCodeExpiry(user.ID)

	s.logAudit(ctx, &user.ID, user.Username, user.Email, entity.ActionRegister, entity.AuditStatusSuccess, nil)
	s.logger().WithFields(logrus.Fields{
		"username": user.Username,
		"email":    user.Email,
		"action":   entity.ActionRegister,
		"status":   entity.AuditStatusSuccess,
	}).Info("new user registered")

	return s.codeTTL, nil
}

// scheduleCodeExpiry clears the stored code once the window elapses. It is
// fire-and-forget and in-process only: a restart loses the timer, which is
// tolerable because Verify also checks the persisted expiry stamp.
func (s *AuthService) scheduleCodeExpiry(userID uuid.UUID) {
	time.AfterFunc(s.codeTTL, func() {
		if err := s.users.ClearVerificationCode(context.Background(), userID); err != nil {
			s.logger().WithError(err).WithField("user_id", userID).Warn("verification code cleanup failed")
		}
	})
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = utils.NormalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = s.hasher.Verify(dummyPasswordHash, password)
		s.logAudit(ctx, nil, "", email, entity.ActionLogin, entity.AuditStatusFailed, map[string]any{"reason": "unknown email"})
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		s.logAudit(ctx, &user.ID, user.Username, user.Email, entity.ActionLogin, entity.AuditStatusFailed, map[string]any{"reason": "wrong password"})
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		s.logAudit(ctx, &user.ID, user.Username, user.Email, entity.ActionLogin, entity.AuditStatusFailed, map[string]any{"reason": "not verified"})
		return nil, ErrNotVerified
	}

	result, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, &user.ID, user.Username, user.Email, entity.ActionLogin, entity.AuditStatusSuccess, map[string]any{"role": user.Role})
	s.logger().WithFields(logrus.Fields{
		"username": user.Username,
		"email":    user.Email,
		"action":   entity.ActionLogin,
		"status":   entity.AuditStatusSuccess,
	}).Info("user logged in")

	return result, nil
}

// Verify confirms the emailed code. A code past its persisted expiry stamp
// counts as absent even if the background sweep has not fired yet.
func (s *AuthService) Verify(ctx context.Context, email, code string) error {
	email = utils.NormalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if user.VerificationCode == nil {
		return ErrCodeExpired
	}
	if user.VerificationCodeExpiresAt != nil && s.now().After(*user.VerificationCodeExpiresAt) {
		return ErrCodeExpired
	}

	submitted, err := strconv.Atoi(code)
	if err != nil || submitted != *user.VerificationCode {
		s.logAudit(ctx, &user.ID, user.Username, user.Email, entity.ActionVerify, entity.AuditStatusFailed, map[string]any{"reason": "wrong code"})
		return ErrCodeMismatch
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return err
	}

	s.logAudit(ctx, &user.ID, user.Username, user.Email, entity.ActionVerify, entity.AuditStatusSuccess, nil)
	s.logger().WithFields(logrus.Fields{
		"username": user.Username,
		"email":    user.Email,
		"action":   entity.ActionVerify,
		"status":   entity.AuditStatusSuccess,
	}).Info("user verified")

	return nil
}

// Refresh re-issues both tokens from a still-valid refresh token. The user
// is re-read so a record removed since login cannot mint new sessions.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidRefresh
	}

	result, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, &user.ID, user.Username, user.Email, entity.ActionRefresh, entity.AuditStatusSuccess, nil)
	return result, nil
}

// Logout only records the event; the cookies are cleared at the boundary
// and the tokens themselves stay valid until expiry (no server-side state).
func (s *AuthService) Logout(ctx context.Context, claims *utils.Claims) {
	var userID *uuid.UUID
	if id, err := uuid.Parse(claims.UserID); err == nil {
		userID = &id
	}
	s.logAudit(ctx, userID, "", claims.Email, entity.ActionLogout, entity.AuditStatusSuccess, nil)
	s.logger().WithFields(logrus.Fields{
		"email":  claims.Email,
		"action": entity.ActionLogout,
		"status": entity.AuditStatusSuccess,
	}).Info("user logged out")
}

func (s *AuthService) issueTokens(user *entity.User) (*LoginResult, error) {
	access, accessTTL, err := s.tokens.IssueAccessToken(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	refresh, refreshTTL, err := s.tokens.IssueRefreshToken(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		User:         user,
		AccessToken:  access,
		AccessTTL:    accessTTL,
		RefreshToken: refresh,
		RefreshTTL:   refreshTTL,
	}, nil
}

// logAudit persists the action outcome. Audit failures are logged and
// swallowed; they never mask the operation result.
func (s *AuthService) logAudit(
	ctx context.Context,
	userID *uuid.UUID,
	username, email string,
	action entity.AuditAction,
	status string,
	metadata map[string]any,
) {
	if s.audit == nil {
		return
	}
	var payload datatypes.JSON
	if metadata != nil {
		if bytes, err := json.Marshal(metadata); err == nil {
			payload = datatypes.JSON(bytes)
		}
	}
	log := &entity.AuditLog{
		UserID:   userID,
		Username: username,
		Email:    email,
		Action:   action,
		Status:   status,
		Metadata: payload,
	}
	if err := s.audit.Log(ctx, log); err != nil {
		s.logger().WithError(err).Warn("audit log write failed")
	}
}

func (s *AuthService) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}

func (s *AuthService) logger() *logrus.Logger {
	if s.log == nil {
		return logrus.StandardLogger()
	}
	return s.log
}
