package services

import (
	"fmt"

	"github.com/anjaswicak/test-fullstack/internal/apperr"
	"github.com/anjaswicak/test-fullstack/internal/models"
)

var (
	ErrCredentialsRequired = apperr.Validation("Username and password are required")
	ErrUsernameTaken       = apperr.Conflict("username already taken")
	ErrInvalidCredentials  = apperr.Unauthorized("Invalid username or password")
	ErrIncorrectPassword   = apperr.Unauthorized("incorrect password")
	ErrNoRefreshToken      = apperr.Unauthorized("No refresh token")
	ErrInvalidRefresh      = apperr.Unauthorized("Invalid refresh token")
	ErrPasswordRequired    = apperr.Validation("password is required")
	ErrPasswordTooLong     = apperr.Validation("password must be at most 72 bytes")
	ErrNothingToUpdate     = apperr.Validation("nothing to update")
	ErrUserNotFound        = apperr.NotFound("user not found")
	ErrSelfFollow          = apperr.Validation("cannot follow yourself")
	ErrContentRequired     = apperr.Validation("content is required")
	ErrContentTooLong      = apperr.Validation(fmt.Sprintf("content exceeds %d characters", models.MaxPostLength))
	ErrPostNotFound        = apperr.NotFound("post not found")
)
