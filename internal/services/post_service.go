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

type PostService struct {
	db *gorm.DB
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db}
}

func (s *PostService) Create(ctx context.Context, userID uint, content string) (*models.Post, error) {
	body, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}
	post := models.Post{UserID: userID, Content: body}
	err = s.db.WithContext(ctx).Create(&post).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "postService.Create")
	}
	return &post, nil
}

func (s *PostService) Get(ctx context.Context, id uint) (*dto.FeedItem, error) {
	var items []dto.FeedItem
	err := s.items(ctx).Where("p.id = ?", id).Limit(1).Scan(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "postService.Get")
	}
	if len(items) == 0 {
		return nil, ErrPostNotFound
	}
	return &items[0], nil
}

// Update edits a post owned by userID. Posts of other users are reported as
// missing.
func (s *PostService) Update(ctx context.Context, userID, id uint, content string) (*models.Post, error) {
	body, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("content", body)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "postService.Update")
	}
	if res.RowsAffected == 0 {
		return nil, ErrPostNotFound
	}

	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, errors.Wrap(err, "postService.Update")
	}
	return &post, nil
}

// Delete removes a post owned by userID and returns the number of rows gone.
func (s *PostService) Delete(ctx context.Context, userID, id uint) (int64, error) {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Post{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "postService.Delete")
	}
	if res.RowsAffected == 0 {
		return 0, ErrPostNotFound
	}
	return res.RowsAffected, nil
}

// Feed returns the viewer's own posts and the posts of everyone they follow,
// newest first.
func (s *PostService) Feed(ctx context.Context, viewerID uint, p pagination.Params) ([]dto.FeedItem, error) {
	followees := s.db.Table("follows").Select("followee_id").Where("follower_id = ?", viewerID)

	var items []dto.FeedItem
	err := s.items(ctx).
		Where("p.user_id = ? OR p.user_id IN (?)", viewerID, followees).
		Scopes(database.Newest("p"), database.Paginate(p)).
		Scan(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "postService.Feed")
	}
	return nonNil(items), nil
}

// ListByUser returns one author's posts, newest first.
func (s *PostService) ListByUser(ctx context.Context, authorID uint, p pagination.Params) ([]dto.FeedItem, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", authorID).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "postService.ListByUser")
	}
	if count == 0 {
		return nil, ErrUserNotFound
	}

	var items []dto.FeedItem
	err := s.items(ctx).
		Where("p.user_id = ?", authorID).
		Scopes(database.Newest("p"), database.Paginate(p)).
		Scan(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "postService.ListByUser")
	}
	return nonNil(items), nil
}

func (s *PostService) items(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table("posts AS p").
		Select("p.id, p.user_id, u.username AS author, p.content, p.created_at, p.updated_at").
		Joins("JOIN users AS u ON u.id = p.user_id")
}
