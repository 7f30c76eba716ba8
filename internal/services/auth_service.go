package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/anjaswicak/test-fullstack/internal/models"
	"github.com/anjaswicak/test-fullstack/internal/tokens"
)

var errRefreshNotLive = errors.New("refresh token is not live")

type AuthService struct {
	db     *gorm.DB
	tokens *tokens.Manager
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, tm *tokens.Manager) *AuthService {
	return &AuthService{db: db, tokens: tm, now: time.Now}
}

// Register creates a user. The unique index on username decides races: a
// duplicate insert fails with ErrUsernameTaken.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrCredentialsRequired
	}
	name, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{Username: name, PasswordHash: hash}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&user).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, errors.Wrap(err, "authService.Register")
	}
	return &user, nil
}

// Authenticate returns the user for a matching username and password and nil
// otherwise. It does not say which of the two was wrong.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", canonicalUsername(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "authService.Authenticate")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*tokens.Pair, error) {
	if username == "" || password == "" {
		return nil, ErrCredentialsRequired
	}
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return s.IssueTokens(ctx, user)
}

// IssueTokens mints an access and refresh pair and records the refresh jti.
func (s *AuthService) IssueTokens(ctx context.Context, user *models.User) (*tokens.Pair, error) {
	pair, err := s.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	record := models.RefreshToken{ID: pair.RefreshID, UserID: user.ID, ExpiresAt: pair.RefreshExpiresAt}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, errors.Wrap(err, "authService.IssueTokens")
	}
	return pair, nil
}

// Refresh rotates a refresh token. The presented token is revoked and its
// successor stored in one transaction; of two concurrent calls with the same
// token only one can revoke it. Presenting a token that was already rotated is
// treated as theft and revokes every live token of the user.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*tokens.Pair, error) {
	if raw == "" {
		return nil, ErrNoRefreshToken
	}
	claims, jti, err := s.tokens.ParseRefresh(raw)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	var user models.User
	err = s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidRefresh
	}
	if err != nil {
		return nil, errors.Wrap(err, "authService.Refresh")
	}

	access, err := s.tokens.IssueAccess(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	nextID := uuid.New()
	refresh, expiresAt, err := s.tokens.IssueRefresh(user.ID, user.Username, nextID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND user_id = ? AND revoked_at IS NULL AND expires_at > ?", jti, user.ID, now).
			Updates(map[string]interface{}{"revoked_at": now, "replaced_by": nextID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errRefreshNotLive
		}
		return tx.Create(&models.RefreshToken{ID: nextID, UserID: user.ID, ExpiresAt: expiresAt}).Error
	})
	if errors.Is(err, errRefreshNotLive) {
		if s.wasRotated(ctx, jti) {
			slog.Warn("refresh token reuse detected", "user_id", user.ID, "jti", jti.String())
			if err := s.RevokeAll(ctx, user.ID); err != nil {
				slog.Error("failed to revoke refresh tokens", "user_id", user.ID, "error", err)
			}
		}
		return nil, ErrInvalidRefresh
	}
	if err != nil {
		return nil, errors.Wrap(err, "authService.Refresh")
	}

	return &tokens.Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshID:        nextID,
		RefreshExpiresAt: expiresAt,
	}, nil
}

// wasRotated reports whether the token was already exchanged for a successor.
// Tokens revoked by logout or simply expired have no successor.
func (s *AuthService) wasRotated(ctx context.Context, jti uuid.UUID) bool {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND replaced_by IS NOT NULL", jti).
		Count(&n).Error
	if err != nil {
		slog.Error("failed to look up refresh token", "jti", jti.String(), "error", err)
		return false
	}
	return n > 0
}

// Logout revokes the presented refresh token. Missing or unparsable tokens are
// ignored so logout always succeeds.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	_, jti, err := s.tokens.ParseRefresh(raw)
	if err != nil {
		return nil
	}
	err = s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", jti).
		Update("revoked_at", s.now()).Error
	return errors.Wrap(err, "authService.Logout")
}

func (s *AuthService) RevokeAll(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", s.now()).Error
	return errors.Wrap(err, "authService.RevokeAll")
}

// DeleteAccount removes the user and everything they own after checking the
// password.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uint, password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return errors.Wrap(err, "authService.DeleteAccount")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrIncorrectPassword
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR followee_id = ?", userID, userID).Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	return errors.Wrap(err, "authService.DeleteAccount")
}
