package services

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anjaswicak/test-fullstack/internal/dto"
	"github.com/anjaswicak/test-fullstack/internal/models"
)

type SocialService struct {
	db *gorm.DB
}

func NewSocialService(db *gorm.DB) *SocialService {
	return &SocialService{db: db}
}

// Follow adds the edge follower -> followee. Following twice is not an error;
// the message says which case happened.
func (s *SocialService) Follow(ctx context.Context, followerID, followeeID uint) (string, error) {
	if followerID == followeeID {
		return "", ErrSelfFollow
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID})
	if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
		return "", ErrUserNotFound
	}
	if res.Error != nil {
		return "", errors.Wrap(res.Error, "socialService.Follow")
	}
	if res.RowsAffected == 0 {
		return fmt.Sprintf("you already follow user %d", followeeID), nil
	}
	return fmt.Sprintf("you are now following user %d", followeeID), nil
}

// Unfollow removes the edge if present and reports success either way.
func (s *SocialService) Unfollow(ctx context.Context, followerID, followeeID uint) (string, error) {
	err := s.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{}).Error
	if err != nil {
		return "", errors.Wrap(err, "socialService.Unfollow")
	}
	return fmt.Sprintf("you unfollowed user %d", followeeID), nil
}

// ListFollowing returns the users userID follows.
func (s *SocialService) ListFollowing(ctx context.Context, userID uint) ([]dto.UserSummary, error) {
	return s.list(ctx, "f.followee_id", "f.follower_id", userID)
}

// ListFollowers returns the users following userID.
func (s *SocialService) ListFollowers(ctx context.Context, userID uint) ([]dto.UserSummary, error) {
	return s.list(ctx, "f.follower_id", "f.followee_id", userID)
}

func (s *SocialService) list(ctx context.Context, joinCol, filterCol string, userID uint) ([]dto.UserSummary, error) {
	var rows []dto.UserSummary
	err := s.db.WithContext(ctx).Table("follows AS f").
		Select("u.id, u.username").
		Joins("JOIN users AS u ON u.id = "+joinCol).
		Where(filterCol+" = ?", userID).
		Order("u.username ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "socialService.list")
	}
	return nonNil(rows), nil
}
