package stats

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// Stats is the interface for the statistics service.
type Stats interface {
	GetStats(ctx context.Context, groupID string) (*GroupStats, error)
	Recompute(ctx context.Context, groupID string) (*GroupStats, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Stats

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.GET("/group/:group_id", h.getStatsHandler)
	r.POST("/group/:group_id/recalculate", h.recalculateHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) getStatsHandler(c *gin.Context) {
	groupID := c.Param("group_id")

	groupStats, err := h.Service.GetStats(c, groupID)
	if err != nil {
		if err == ErrGroupNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": groupStats})
}

func (h *httpHandler) recalculateHandler(c *gin.Context) {
	groupID := c.Param("group_id")

	groupStats, err := h.Service.Recompute(c, groupID)
	if err != nil {
		if err == ErrGroupNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": groupStats})
}
