// Package v1 exposes the recommendation engine over REST.
package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/hrygo/gourmet/internal/profile"
	"github.com/hrygo/gourmet/server/auth"
	"github.com/hrygo/gourmet/server/service/recommender"
	"github.com/hrygo/gourmet/store"
)

// Feedback writes mutate the preference embedding, so they are rate limited
// per user well below anything an interactive client produces.
const (
	feedbackRatePerSecond = 5
	feedbackBurst         = 10
)

type APIV1Service struct {
	Recommender *recommender.Engine
	Profile     *profile.Profile
	Store       *store.Store
	Secret      string

	authenticator *auth.Authenticator
}

func NewAPIV1Service(secret string, profile *profile.Profile, store *store.Store, engine *recommender.Engine) *APIV1Service {
	return &APIV1Service{
		Recommender:   engine,
		Profile:       profile,
		Store:         store,
		Secret:        secret,
		authenticator: auth.NewAuthenticator(store, secret),
	}
}

// Register mounts all v1 routes on the given Echo instance.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	apiGroup := echoServer.Group("/api/v1")
	apiGroup.Use(middleware.CORS())
	apiGroup.Use(s.authMiddleware)

	apiGroup.GET("/onboarding", s.GetOnboardingContent)
	apiGroup.POST("/onboarding", s.Onboard)

	apiGroup.GET("/feed", s.GetFeed)
	apiGroup.GET("/feed/closest", s.GetClosestContent)

	apiGroup.POST("/feedback", s.HandleFeedback, s.feedbackRateLimiter())

	apiGroup.POST("/flavours", s.CreateFlavour)
	apiGroup.GET("/flavours", s.ListFlavours)
	apiGroup.GET("/flavours/:id", s.GetFlavour)
	apiGroup.DELETE("/flavours/:id", s.DeleteFlavour)
}

// authMiddleware resolves the bearer token to a user and stores the subject in
// the request context. Every v1 route requires authentication.
func (s *APIV1Service) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := s.authenticator.Authenticate(c.Request().Context(), c.Request())
		if err != nil {
			switch err {
			case auth.ErrNoCredentials, auth.ErrInvalidCredentials, auth.ErrExpiredCredentials:
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			default:
				slog.Error("authentication failed", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "authentication failed")
			}
		}

		ctx := auth.SetUserIDInContext(c.Request().Context(), user.ID)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// feedbackRateLimiter limits feedback writes per authenticated user, falling
// back to the client address before authentication has run.
func (s *APIV1Service) feedbackRateLimiter() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(feedbackRatePerSecond),
			Burst:     feedbackBurst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if userID, ok := auth.UserIDFromContext(c.Request().Context()); ok {
				return userID, nil
			}
			return c.RealIP(), nil
		},
		ErrorHandler: func(_ echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		},
		DenyHandler: func(_ echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "feedback rate limit exceeded")
		},
	})
}

// currentUserID returns the authenticated subject. The auth middleware runs on
// every v1 route, so a missing subject is a programming error.
func currentUserID(c echo.Context) (string, error) {
	userID, ok := auth.UserIDFromContext(c.Request().Context())
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return userID, nil
}
