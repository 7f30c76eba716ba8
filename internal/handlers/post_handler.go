package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anjaswicak/test-fullstack/internal/dto"
	"github.com/anjaswicak/test-fullstack/internal/identity"
	"github.com/anjaswicak/test-fullstack/internal/pagination"
)

type PostHandler struct {
	posts  PostService
	paging pagination.Policy
}

func NewPostHandler(posts PostService, paging pagination.Policy) *PostHandler {
	return &PostHandler{posts: posts, paging: paging}
}

func (h *PostHandler) Create(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	post, err := h.posts.Create(c.UserContext(), userID, req.Content)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid post id")
	}
	item, err := h.posts.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(item)
}

func (h *PostHandler) Update(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid post id")
	}

	var req dto.UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	post, err := h.posts.Update(c.UserContext(), userID, id, req.Content)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(post)
}

func (h *PostHandler) Delete(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid post id")
	}

	n, err := h.posts.Delete(c.UserContext(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DeleteResponse{Deleted: n})
}

// Feed returns the caller's own posts and those of the users they follow.
func (h *PostHandler) Feed(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	items, err := h.posts.Feed(c.UserContext(), userID, h.paging.Resolve(pageQuery(c)))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(items)
}

func (h *PostHandler) ListByUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user id")
	}
	items, err := h.posts.ListByUser(c.UserContext(), id, h.paging.Resolve(pageQuery(c)))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(items)
}
