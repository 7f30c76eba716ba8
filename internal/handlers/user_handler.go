package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anjaswicak/test-fullstack/internal/dto"
	"github.com/anjaswicak/test-fullstack/internal/identity"
	"github.com/anjaswicak/test-fullstack/internal/models"
	"github.com/anjaswicak/test-fullstack/internal/pagination"
)

type UserHandler struct {
	users  UserService
	paging pagination.Policy
}

func NewUserHandler(users UserService, paging pagination.Policy) *UserHandler {
	return &UserHandler{users: users, paging: paging}
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user id")
	}
	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(profile(user))
}

func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.users.UpdateProfile(c.UserContext(), userID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(profile(user))
}

// Suggested lists other users with their stats as seen by the user in the path.
func (h *UserHandler) Suggested(c *fiber.Ctx) error {
	viewerID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user id")
	}
	list, err := h.users.Suggested(c.UserContext(), viewerID, h.paging.Resolve(pageQuery(c)))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

func profile(u *models.User) dto.UserProfile {
	return dto.UserProfile{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}
