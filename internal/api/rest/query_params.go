package rest

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/KXX-Hub/kxx-digital-album/internal/store"
)

// GetEventsQueryParams holds query parameters for GET /events
type GetEventsQueryParams struct {
	After uint64 `form:"after,default=0"`
	Limit int    `form:"limit,default=100"`
}

// Validate validates the query parameters
func (p *GetEventsQueryParams) Validate() error {
	if p.Limit < 1 || p.Limit > store.MaxEventLimit {
		return fmt.Errorf("limit must be between 1 and %d", store.MaxEventLimit)
	}
	return nil
}

// ParseGetEventsQuery parses query parameters for GET /events
func ParseGetEventsQuery(c *gin.Context) (*GetEventsQueryParams, error) {
	var params GetEventsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, fmt.Errorf("invalid query parameters: %w", err)
	}
	return &params, nil
}

// parseIDParam parses a positive numeric id from the path
func parseIDParam(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return id, nil
}

// parseTrackNumberParam parses a positive track number from the path
func parseTrackNumberParam(c *gin.Context) (int, error) {
	n, err := strconv.Atoi(c.Param("track_number"))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("track_number must be a positive integer")
	}
	return n, nil
}
