package matches

import (
	"context"
	"log"
	"net/http"

	auth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	ratelimit "github.com/kicktally/foosball-sync/services/ratelimit"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// Matches is the interface for the match service.
type Matches interface {
	CreateMatch(ctx context.Context, userID string, request CreateMatchRequest) (string, ratelimit.Decision, error)
	UpdateMatch(ctx context.Context, userID, matchID string, request UpdateMatchRequest) error
	DeleteMatch(ctx context.Context, userID, matchID string) error
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Matches

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.POST("/create", h.createHandler)
	r.POST("/update/:match_id", h.updateHandler)
	r.POST("/delete/:match_id", h.deleteHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) createHandler(c *gin.Context) {
	token := c.MustGet("token").(*auth.Token)

	var request CreateMatchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	matchID, decision, err := h.Service.CreateMatch(c, token.UID, request)
	if err != nil {
		if err == ratelimit.ErrCooldownActive {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      err.Error(),
				"retryAfter": decision.RetryAfterSeconds(),
			})
			c.Abort()
			return
		}
		if err == ErrNotGroupMember {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		log.Printf("Could not create match: %v\n", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	c.JSON(http.StatusCreated, gin.H{"matchId": matchID})
}

func (h *httpHandler) updateHandler(c *gin.Context) {
	token := c.MustGet("token").(*auth.Token)
	matchID := c.Param("match_id")

	var request UpdateMatchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	if err := h.Service.UpdateMatch(c, token.UID, matchID, request); err != nil {
		if err == ErrNotAllowed {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		log.Printf("Could not update match: %v\n", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"matchId": matchID})
}

func (h *httpHandler) deleteHandler(c *gin.Context) {
	token := c.MustGet("token").(*auth.Token)
	matchID := c.Param("match_id")

	if err := h.Service.DeleteMatch(c, token.UID, matchID); err != nil {
		if err == ErrNotAllowed {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		log.Printf("Could not delete match: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Match deleted"})
}
