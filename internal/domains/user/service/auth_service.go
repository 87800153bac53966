package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tropharbour-backend/internal/domains/user/model"
	"tropharbour-backend/internal/domains/user/repository"
	"tropharbour-backend/internal/infrastructure/database"
	"tropharbour-backend/internal/shared"
	"tropharbour-backend/internal/shared/apperror"
	"tropharbour-backend/pkg/logger"
)

const (
	DefaultHashCost = 12
	resetTokenBytes = 32
	resetTokenTTL   = 10 * time.Minute
)

type authService struct {
	repo     repository.UserRepository
	tokens   TokenManager
	mailer   Mailer
	hashCost int
	now      func() time.Time
}

func NewAuthService(repo repository.UserRepository, tokens TokenManager, mailer Mailer) AuthService {
	return &authService{
		repo:     repo,
		tokens:   tokens,
		mailer:   mailer,
		hashCost: DefaultHashCost,
		now:      time.Now,
	}
}

// =====================================================
// SIGNUP / LOGIN
// =====================================================

func (s *authService) Signup(ctx context.Context, req model.SignupRequest, accountURL string) (*model.AuthResult, error) {
	req.Email = model.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return nil, apperror.Translate(err)
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := model.New(req.Name, req.Email, hash)
	if err := user.Validate(); err != nil {
		return nil, apperror.Translate(err)
	}

	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	// A lost welcome email does not undo the account.
	if err := s.mailer.SendWelcome(ctx, user.Name, user.Email, accountURL); err != nil {
		logger.Error("failed to send welcome email", err)
	}

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResult, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, model.ErrMissingCredentials
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, model.ErrIncorrectCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, model.ErrIncorrectCredentials
	}

	return s.issue(user)
}

// =====================================================
// VERIFY
// =====================================================

func (s *authService) Verify(ctx context.Context, token string) (*shared.Principal, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperror.Translate(err)
	}

	id, err := database.ParseID(claims.UserID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindAuthentication, apperror.MsgTokenInvalid, err)
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, model.ErrUserGone
		}
		return nil, err
	}

	if user.PasswordChangedAfter(claims.IssuedAt.Time) {
		return nil, model.ErrPasswordChanged
	}

	return user.Principal(), nil
}

// =====================================================
// PASSWORD RESET
// =====================================================

func (s *authService) ForgotPassword(ctx context.Context, email, resetURLBase string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return model.ErrNoUserWithEmail
		}
		return err
	}

	raw, err := newResetToken()
	if err != nil {
		return err
	}

	expires := s.now().Add(resetTokenTTL)
	if err := s.repo.SetResetToken(ctx, user.ID, hashToken(raw), expires); err != nil {
		return err
	}

	resetURL := strings.TrimRight(resetURLBase, "/") + "/" + raw
	if err := s.mailer.SendPasswordReset(ctx, user.Name, user.Email, resetURL); err != nil {
		if clearErr := s.repo.ClearResetToken(ctx, user.ID); clearErr != nil {
			logger.Error("failed to clear reset token", clearErr)
		}
		return model.ErrEmailFailed(err)
	}

	logger.Info("password reset token issued", map[string]interface{}{
		"user_id": user.ID.Hex(),
	})
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, rawToken string, req model.ResetPasswordRequest) (*model.AuthResult, error) {
	user, err := s.repo.FindByResetToken(ctx, hashToken(rawToken), s.now())
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, model.ErrResetTokenInvalid
		}
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, apperror.Translate(err)
	}

	if err := s.changePassword(ctx, user, req.Password); err != nil {
		return nil, err
	}
	user.PasswordResetToken = ""
	user.PasswordResetExpires = nil

	return s.issue(user)
}

func (s *authService) UpdatePassword(ctx context.Context, userID string, req model.UpdatePasswordRequest) (*model.AuthResult, error) {
	id, err := database.ParseID(userID)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.PasswordCurrent)) != nil {
		return nil, model.ErrWrongPassword
	}

	if err := req.Validate(); err != nil {
		return nil, apperror.Translate(err)
	}

	if err := s.changePassword(ctx, user, req.Password); err != nil {
		return nil, err
	}

	return s.issue(user)
}

// =====================================================
// HELPERS
// =====================================================

// changePassword records the change at the current time. The replacement
// token is issued afterwards, so it is never older than the change.
func (s *authService) changePassword(ctx context.Context, user *model.User, password string) error {
	hash, err := s.hash(password)
	if err != nil {
		return err
	}

	changedAt := s.now()
	if err := s.repo.SetPassword(ctx, user.ID, hash, changedAt); err != nil {
		return err
	}

	user.Password = hash
	user.PasswordChangedAt = &changedAt
	return nil
}

func (s *authService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *authService) issue(user *model.User) (*model.AuthResult, error) {
	token, err := s.tokens.Generate(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &model.AuthResult{Token: token, User: user}, nil
}

func newResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
