package dto

import "time"

type CreatePostRequest struct {
	Content string `json:"content"`
}

type UpdatePostRequest struct {
	Content string `json:"content"`
}

// FeedItem is a post annotated with its author's username.
type FeedItem struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type UserProfile struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type SuggestedUser struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	PostsCount     int64  `json:"posts_count"`
	FollowersCount int64  `json:"followers_count"`
	IsFollowing    bool   `json:"is_following"`
}
