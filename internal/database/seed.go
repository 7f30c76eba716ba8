package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/anjaswicak/test-fullstack/internal/models"
)

type seedUser struct {
	id       uint
	username string
	password string
}

var seedUsers = []seedUser{
	{id: 1, username: "author", password: "authorpass"},
	{id: 2, username: "follower", password: "followerpass"},
}

var seedPosts = []string{
	"Hello world! This is my first post on the new feed.",
	"Starting to test follow and unfollow.",
	"Working on the JWT refresh flow. Wish me luck!",
}

// Seed replaces all users, posts and follows with a small demo data set:
// "author" has three posts and "follower" follows "author".
func Seed(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"follows", "posts", "refresh_tokens", "users"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return errors.Wrapf(err, "clear %s", table)
			}
		}

		for _, su := range seedUsers {
			hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
			if err != nil {
				return errors.Wrap(err, "hash seed password")
			}
			user := models.User{ID: su.id, Username: su.username, PasswordHash: string(hash)}
			if err := tx.Create(&user).Error; err != nil {
				return errors.Wrapf(err, "insert user %s", su.username)
			}
		}

		base := time.Now().Add(-time.Duration(len(seedPosts)) * time.Minute)
		for i, content := range seedPosts {
			post := models.Post{
				UserID:    seedUsers[0].id,
				Content:   content,
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}
			if err := tx.Create(&post).Error; err != nil {
				return errors.Wrap(err, "insert post")
			}
		}

		follow := models.Follow{FollowerID: seedUsers[1].id, FolloweeID: seedUsers[0].id}
		return errors.Wrap(tx.Create(&follow).Error, "insert follow")
	})
	if err != nil {
		return err
	}
	return FixSequences(ctx, db)
}
