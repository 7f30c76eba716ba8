package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/anjaswicak/test-fullstack/internal/config"
	"github.com/anjaswicak/test-fullstack/internal/handlers"
	"github.com/anjaswicak/test-fullstack/internal/middleware"
	"github.com/anjaswicak/test-fullstack/internal/tokens"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	tm *tokens.Manager,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	socialHandler *handlers.SocialHandler,
	postHandler *handlers.PostHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")
	api.Use(rateLimit(cfg.RateLimit))
	api.Get("/health", healthHandler.Check)

	// Credential endpoints get a stricter per-IP budget.
	authLimit := rateLimit(cfg.AuthRateLimit)
	api.Post("/register", authLimit, authHandler.Register)
	api.Post("/login", authLimit, authHandler.Login)
	api.Post("/refresh", authLimit, authHandler.Refresh)
	api.Post("/logout", authHandler.Logout)

	protected := middleware.JWTProtected(tm)

	api.Patch("/users/me", protected, userHandler.UpdateMe)
	api.Delete("/users/me", protected, authHandler.DeleteAccount)
	api.Get("/users/:id/suggested", protected, userHandler.Suggested)
	api.Get("/users/:id/posts", protected, postHandler.ListByUser)
	api.Get("/users/:id/following", socialHandler.Following)
	api.Get("/users/:id/followers", socialHandler.Followers)
	api.Get("/users/:id", userHandler.Get)

	api.Post("/follow/:userid", protected, socialHandler.Follow)
	api.Post("/unfollow/:userid", protected, socialHandler.Unfollow)

	api.Get("/feed", protected, postHandler.Feed)
	api.Post("/posts", protected, postHandler.Create)
	api.Get("/posts/:id", protected, postHandler.Get)
	api.Patch("/posts/:id", protected, postHandler.Update)
	api.Delete("/posts/:id", protected, postHandler.Delete)
}

// rateLimit allows max requests per minute per IP; zero disables it.
func rateLimit(max int) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}
