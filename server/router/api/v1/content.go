package v1

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/gourmet/store"
)

// ContentItem is the wire shape of a content row. The rating is the
// requesting user's own rating, zero when unrated.
type ContentItem struct {
	ID          int32           `json:"id"`
	ContentType string          `json:"content_type"`
	Title       string          `json:"title"`
	URL         string          `json:"url"`
	Description string          `json:"description"`
	SourceURL   string          `json:"source_url,omitempty"`
	Date        time.Time       `json:"date"`
	Media       json.RawMessage `json:"media,omitempty"`
	Rating      float64         `json:"rating"`
}

func convertContent(content *store.Content) *ContentItem {
	return &ContentItem{
		ID:          content.ID,
		ContentType: content.ContentType,
		Title:       content.Title,
		URL:         content.URL,
		Description: content.Description,
		Date:        content.Date,
		Media:       json.RawMessage(content.Media),
	}
}

func convertRatedContent(rated *store.RatedContent) *ContentItem {
	item := convertContent(rated.Content)
	item.SourceURL = rated.SourceURL
	item.Rating = rated.Rating
	return item
}

func convertContentList(list []*store.Content) []*ContentItem {
	items := make([]*ContentItem, len(list))
	for i, content := range list {
		items[i] = convertContent(content)
	}
	return items
}

func convertRatedContentList(list []*store.RatedContent) []*ContentItem {
	items := make([]*ContentItem, len(list))
	for i, rated := range list {
		items[i] = convertRatedContent(rated)
	}
	return items
}

// parseIDList parses a comma-separated id query parameter. An empty parameter
// yields nil.
func parseIDList(c echo.Context, name string) ([]int32, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int32, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s id %q", name, part)
		}
		ids = append(ids, int32(id))
	}
	return ids, nil
}
