package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// FeedbackRequest is the body of POST /api/v1/feedback. Rating is in [-1, 1];
// flavour_id targets a flavour's embedding instead of the user's.
type FeedbackRequest struct {
	ContentID int32   `json:"content_id"`
	Rating    float64 `json:"rating"`
	FlavourID *int32  `json:"flavour_id,omitempty"`
}

// HandleFeedback applies an explicit rating to the subject's preference
// embedding and records it.
//
// POST /api/v1/feedback
func (s *APIV1Service) HandleFeedback(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	request := &FeedbackRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if request.ContentID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "content_id required")
	}

	if err := s.Recommender.HandleFeedback(c.Request().Context(), userID, request.FlavourID, request.ContentID, request.Rating); err != nil {
		return mapEngineError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
