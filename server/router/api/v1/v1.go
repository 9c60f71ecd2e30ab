package v1

import (
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/chatassist/chatassist/internal/profile"
	"github.com/chatassist/chatassist/plugin/ai"
	"github.com/chatassist/chatassist/plugin/ai/suggest"
	"github.com/chatassist/chatassist/server/auth"
	"github.com/chatassist/chatassist/server/finops"
	"github.com/chatassist/chatassist/server/internal/apierrors"
	"github.com/chatassist/chatassist/server/middleware"
	"github.com/chatassist/chatassist/store"
)

// APIV1Service exposes the REST API. Handlers translate HTTP requests into
// store and suggester calls, and *apierrors.APIError values into HTTP
// statuses via the server's error handler.
type APIV1Service struct {
	Secret    string
	Profile   *profile.Profile
	Store     *store.Store
	Suggester *suggest.Suggester
	Usage     *finops.UsageTracker

	authenticator *auth.Authenticator
	apiLimiter    *middleware.RateLimiter
	authLimiter   *middleware.RateLimiter
}

func NewAPIV1Service(secret string, profile *profile.Profile, store *store.Store) *APIV1Service {
	return &APIV1Service{
		Secret:        secret,
		Profile:       profile,
		Store:         store,
		Suggester:     suggest.New(store, ai.NewConfigFromProfile(profile)),
		Usage:         finops.NewUsageTracker(),
		authenticator: auth.NewAuthenticator(store, secret),
		apiLimiter:    middleware.NewRateLimiter(rate.Limit(profile.RateLimitPerSecond), profile.RateLimitBurst),
		// Login and register get a much tighter budget to slow down
		// credential stuffing. The limit is configured per minute.
		authLimiter: middleware.NewRateLimiter(rate.Limit(profile.AuthRateLimitPerMinute/60), 5),
	}
}

// RegisterRoutes attaches all API routes to the echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	apiGroup := echoServer.Group("/api", middleware.RateLimit(s.apiLimiter))

	authGroup := apiGroup.Group("/auth")
	authThrottle := middleware.RateLimit(s.authLimiter)
	authGroup.POST("/register", s.Register, authThrottle)
	authGroup.POST("/login", s.Login, authThrottle)
	authGroup.POST("/refresh", s.RefreshToken)
	authGroup.GET("/me", s.GetCurrentUser, s.AuthMiddleware)
	authGroup.GET("/preferences", s.GetPreferences, s.AuthMiddleware)
	authGroup.PATCH("/preferences", s.UpdatePreferences, s.AuthMiddleware)

	creatorGroup := apiGroup.Group("/creators", s.AuthMiddleware)
	creatorGroup.GET("", s.ListCreators)
	creatorGroup.POST("", s.CreateCreator)
	creatorGroup.GET("/:id", s.GetCreator)
	creatorGroup.PATCH("/:id", s.UpdateCreator)
	creatorGroup.PATCH("/:id/style", s.UpsertCreatorStyle)
	creatorGroup.GET("/:id/examples", s.ListStyleExamples)
	creatorGroup.POST("/:id/examples", s.AddStyleExample)
	creatorGroup.DELETE("/:id/examples/:exampleId", s.DeleteStyleExample)

	suggestionGroup := apiGroup.Group("/suggestions", s.AuthMiddleware)
	suggestionGroup.POST("", s.GetSuggestions)
	suggestionGroup.GET("/stats", s.GetSuggestionStats)
	suggestionGroup.POST("/clear", s.ClearSuggestions)

	apiGroup.GET("/usage", s.GetUsage, s.AuthMiddleware)
}

// AuthMiddleware rejects requests without a valid bearer access token and
// stores the caller's identity in the request context.
func (s *APIV1Service) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		result := s.authenticator.Authenticate(c.Request().Context(), c.Request().Header.Get("Authorization"))
		if result == nil || result.User == nil {
			return apierrors.Unauthenticated("authentication required")
		}
		ctx := auth.SetUserIDInContext(c.Request().Context(), result.User.ID)
		if result.Claims != nil {
			ctx = auth.SetUserClaimsInContext(ctx, result.Claims)
		}
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
