package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/anjaswicak/test-fullstack/internal/dto"
	"github.com/anjaswicak/test-fullstack/internal/identity"
)

type SocialHandler struct {
	social SocialService
}

func NewSocialHandler(social SocialService) *SocialHandler {
	return &SocialHandler{social: social}
}

func (h *SocialHandler) Follow(c *fiber.Ctx) error {
	return h.edge(c, h.social.Follow)
}

func (h *SocialHandler) Unfollow(c *fiber.Ctx) error {
	return h.edge(c, h.social.Unfollow)
}

func (h *SocialHandler) edge(c *fiber.Ctx, op func(ctx context.Context, followerID, followeeID uint) (string, error)) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	targetID, ok := paramID(c, "userid")
	if !ok {
		return badRequest(c, "Invalid target user id")
	}

	msg, err := op(c.UserContext(), userID, targetID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: msg})
}

func (h *SocialHandler) Following(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user id")
	}
	list, err := h.social.ListFollowing(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

func (h *SocialHandler) Followers(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user id")
	}
	list, err := h.social.ListFollowers(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}
