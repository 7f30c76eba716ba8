package services

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/anjaswicak/test-fullstack/internal/database"
	"github.com/anjaswicak/test-fullstack/internal/dto"
	"github.com/anjaswicak/test-fullstack/internal/models"
	"github.com/anjaswicak/test-fullstack/internal/pagination"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "userService.Get")
	}
	return &user, nil
}

// Suggested lists every user except the viewer with post and follower counts
// and whether the viewer already follows them, ordered by username.
func (s *UserService) Suggested(ctx context.Context, viewerID uint, p pagination.Params) ([]dto.SuggestedUser, error) {
	var rows []dto.SuggestedUser
	err := s.db.WithContext(ctx).Table("users AS u").
		Select(`u.id, u.username,
			(SELECT COUNT(*) FROM posts AS p WHERE p.user_id = u.id) AS posts_count,
			(SELECT COUNT(*) FROM follows AS f WHERE f.followee_id = u.id) AS followers_count,
			EXISTS (SELECT 1 FROM follows AS v WHERE v.follower_id = ? AND v.followee_id = u.id) AS is_following`,
			viewerID).
		Where("u.id <> ?", viewerID).
		Order("u.username ASC").
		Order("u.id ASC").
		Scopes(database.Paginate(p)).
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "userService.Suggested")
	}
	return nonNil(rows), nil
}

// UpdateProfile changes the username and/or password of the caller.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req dto.UpdateProfileRequest) (*models.User, error) {
	if req.Username == nil && req.Password == nil {
		return nil, ErrNothingToUpdate
	}

	updates := map[string]interface{}{}
	if req.Username != nil {
		name, err := normalizeUsername(*req.Username)
		if err != nil {
			return nil, err
		}
		updates["username"] = name
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return nil, ErrUsernameTaken
	}
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "userService.UpdateProfile")
	}
	if res.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return s.Get(ctx, userID)
}
