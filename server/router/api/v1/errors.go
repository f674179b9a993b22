package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/gourmet/server/service/recommender"
)

// mapEngineError converts engine sentinels to HTTP status codes. Anything
// unrecognized is a 500 and gets logged with its cause chain; the client only
// sees a generic message.
func mapEngineError(err error) error {
	switch {
	case errors.Is(err, recommender.ErrNoContentFound):
		return echo.NewHTTPError(http.StatusNotFound, "no content found")
	case errors.Is(err, recommender.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, recommender.ErrInvalidRating):
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be between -1 and 1")
	case errors.Is(err, recommender.ErrNotOnboarded):
		return echo.NewHTTPError(http.StatusConflict, "user has not completed onboarding")
	default:
		slog.Error("request failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
