package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const defaultClosestLimit = 5

// GetFeed returns a ranked recommendation page.
//
// GET /api/v1/feed?flavour_id=3&excluded=1,2,5
func (s *APIV1Service) GetFeed(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	excludedIDs, err := parseIDList(c, "excluded")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var flavourID *int32
	if raw := c.QueryParam("flavour_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid flavour_id")
		}
		parsed := int32(id)
		flavourID = &parsed
	}

	feed, err := s.Recommender.GetFeed(c.Request().Context(), userID, flavourID, excludedIDs)
	if err != nil {
		return mapEngineError(err)
	}
	return c.JSON(http.StatusOK, convertRatedContentList(feed))
}

// GetClosestContent returns the content nearest to the user's embedding,
// ignoring the feed's age window and exposure history.
//
// GET /api/v1/feed/closest?limit=1
func (s *APIV1Service) GetClosestContent(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	limit := defaultClosestLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	list, err := s.Recommender.GetClosestContent(c.Request().Context(), userID, limit)
	if err != nil {
		return mapEngineError(err)
	}
	return c.JSON(http.StatusOK, convertRatedContentList(list))
}
