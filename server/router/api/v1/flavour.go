package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/gourmet/store"
)

// FlavourItem is the wire shape of a flavour. The embedding itself is never
// exposed.
type FlavourItem struct {
	ID        int32     `json:"id"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateFlavourRequest is the body of POST /api/v1/flavours.
type CreateFlavourRequest struct {
	ContentID int32 `json:"content_id"`
}

func convertFlavour(flavour *store.Flavour) *FlavourItem {
	return &FlavourItem{
		ID:        flavour.ID,
		Nickname:  flavour.Nickname,
		CreatedAt: flavour.CreatedAt,
	}
}

// CreateFlavour creates a flavour seeded from a content item.
//
// POST /api/v1/flavours
func (s *APIV1Service) CreateFlavour(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	request := &CreateFlavourRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if request.ContentID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "content_id required")
	}

	flavour, err := s.Recommender.CreateFlavour(c.Request().Context(), userID, request.ContentID)
	if err != nil {
		return mapEngineError(err)
	}
	return c.JSON(http.StatusCreated, convertFlavour(flavour))
}

// ListFlavours lists the user's flavours.
//
// GET /api/v1/flavours
func (s *APIV1Service) ListFlavours(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	list, err := s.Recommender.ListFlavours(c.Request().Context(), userID)
	if err != nil {
		return mapEngineError(err)
	}
	items := make([]*FlavourItem, len(list))
	for i, flavour := range list {
		items[i] = convertFlavour(flavour)
	}
	return c.JSON(http.StatusOK, items)
}

// GetFlavour returns one of the user's flavours.
//
// GET /api/v1/flavours/:id
func (s *APIV1Service) GetFlavour(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parseFlavourID(c)
	if err != nil {
		return err
	}

	flavour, err := s.Recommender.GetFlavour(c.Request().Context(), userID, id)
	if err != nil {
		return mapEngineError(err)
	}
	return c.JSON(http.StatusOK, convertFlavour(flavour))
}

// DeleteFlavour deletes one of the user's flavours.
//
// DELETE /api/v1/flavours/:id
func (s *APIV1Service) DeleteFlavour(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parseFlavourID(c)
	if err != nil {
		return err
	}

	if err := s.Recommender.DeleteFlavour(c.Request().Context(), userID, id); err != nil {
		return mapEngineError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseFlavourID(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid flavour id")
	}
	return int32(id), nil
}
