package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// OnboardRequest is the body of POST /api/v1/onboarding.
type OnboardRequest struct {
	LikedContentIDs []int32 `json:"liked_content_ids"`
}

// GetOnboardingContent returns a diverse sample for a new user to rate.
// Previously shown items are echoed back so the client can re-render them.
//
// GET /api/v1/onboarding?selected=1,2&rejected=3
func (s *APIV1Service) GetOnboardingContent(c echo.Context) error {
	if _, err := currentUserID(c); err != nil {
		return err
	}

	selectedIDs, err := parseIDList(c, "selected")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rejectedIDs, err := parseIDList(c, "rejected")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	list, err := s.Recommender.GetOnboardingContent(c.Request().Context(), selectedIDs, rejectedIDs)
	if err != nil {
		return mapEngineError(err)
	}
	return c.JSON(http.StatusOK, convertContentList(list))
}

// Onboard bootstraps the user's reference embedding from the liked selection.
//
// POST /api/v1/onboarding
func (s *APIV1Service) Onboard(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	request := &OnboardRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if len(request.LikedContentIDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "liked_content_ids cannot be empty")
	}

	if err := s.Recommender.Onboard(c.Request().Context(), userID, request.LikedContentIDs); err != nil {
		return mapEngineError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
