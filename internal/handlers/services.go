package handlers

//go:generate mockgen -destination=mocks/services.go -package=mocks . AuthService,UserService,SocialService,PostService

import (
	"context"

	"github.com/anjaswicak/test-fullstack/internal/dto"
	"github.com/anjaswicak/test-fullstack/internal/models"
	"github.com/anjaswicak/test-fullstack/internal/pagination"
	"github.com/anjaswicak/test-fullstack/internal/tokens"
)

type AuthService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*tokens.Pair, error)
	Refresh(ctx context.Context, raw string) (*tokens.Pair, error)
	Logout(ctx context.Context, raw string) error
	DeleteAccount(ctx context.Context, userID uint, password string) error
}

type UserService interface {
	Get(ctx context.Context, id uint) (*models.User, error)
	Suggested(ctx context.Context, viewerID uint, p pagination.Params) ([]dto.SuggestedUser, error)
	UpdateProfile(ctx context.Context, userID uint, req dto.UpdateProfileRequest) (*models.User, error)
}

type SocialService interface {
	Follow(ctx context.Context, followerID, followeeID uint) (string, error)
	Unfollow(ctx context.Context, followerID, followeeID uint) (string, error)
	ListFollowing(ctx context.Context, userID uint) ([]dto.UserSummary, error)
	ListFollowers(ctx context.Context, userID uint) ([]dto.UserSummary, error)
}

type PostService interface {
	Create(ctx context.Context, userID uint, content string) (*models.Post, error)
	Get(ctx context.Context, id uint) (*dto.FeedItem, error)
	Update(ctx context.Context, userID, id uint, content string) (*models.Post, error)
	Delete(ctx context.Context, userID, id uint) (int64, error)
	Feed(ctx context.Context, viewerID uint, p pagination.Params) ([]dto.FeedItem, error)
	ListByUser(ctx context.Context, authorID uint, p pagination.Params) ([]dto.FeedItem, error)
}
