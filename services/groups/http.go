package groups

import (
	"context"
	"log"
	"net/http"

	auth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	resend "github.com/kicktally/foosball-sync/repos/resend"
	ratelimit "github.com/kicktally/foosball-sync/services/ratelimit"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// Groups is the interface for the group service.
type Groups interface {
	CreateGroup(ctx context.Context, userID, userName string, request CreateGroupRequest) (string, ratelimit.Decision, error)
	JoinWithCode(ctx context.Context, userID, userName, code string) (JoinGroupResponse, error)
	SendInvite(ctx context.Context, userID string, request resend.InviteRequest) error
	MigrateGuest(ctx context.Context, userID string, request MigrateGuestRequest) (int, error)
	DeleteGroup(ctx context.Context, userID, groupID string) error
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Groups

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.POST("/create", h.createHandler)
	r.POST("/join", h.joinHandler)
	r.POST("/invite", h.inviteHandler)
	r.POST("/migrate", h.migrateHandler)
	r.POST("/delete/:group_id", h.deleteHandler)
}

type httpHandler struct {
	HTTPOptions
}

func tokenName(token *auth.Token) string {
	if name, ok := token.Claims["name"].(string); ok && name != "" {
		return name
	}
	return "User"
}

func (h *httpHandler) createHandler(c *gin.Context) {
	token := c.MustGet("token").(*auth.Token)

	var request CreateGroupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	groupID, decision, err := h.Service.CreateGroup(c, token.UID, tokenName(token), request)
	if err != nil {
		if err == ratelimit.ErrLimitExceeded {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": err.Error(),
				"limit": ratelimit.GroupLimit,
			})
			c.Abort()
			return
		}
		if err == ratelimit.ErrCooldownActive {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      err.Error(),
				"retryAfter": decision.RetryAfterSeconds(),
			})
			c.Abort()
			return
		}
		log.Printf("Could not create group: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		c.Abort()
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"groupId":   groupID,
		"remaining": decision.Remaining,
	})
}

func (h *httpHandler) joinHandler(c *gin.Context) {
	token := c.MustGet("token").(*auth.Token)

	var request JoinGroupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	response, err := h.Service.JoinWithCode(c, token.UID, tokenName(token), request.InviteCode)
	if err != nil {
		if err == ErrInvalidInviteCode {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		log.Printf("Could not join group: %v\n", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	message := "Successfully joined group: " + response.GroupName
	if response.AlreadyMember {
		message = "You are already a member of this group"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       message,
		"groupId":       response.GroupID,
		"groupName":     response.GroupName,
		"alreadyMember": response.AlreadyMember,
	})
}

func (h *httpHandler) inviteHandler(c *gin.Context) {
	token := c.MustGet("token").(*auth.Token)

	var request resend.InviteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	if err := h.Service.SendInvite(c, token.UID, request); err != nil {
		if err == ErrNotGroupAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		log.Printf("Could not send invite: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send mail request"})
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invite sent",
		"email":   request.Email,
	})
}

func (h *httpHandler) migrateHandler(c *gin.Context) {
	token := c.MustGet("token").(*auth.Token)

	var request MigrateGuestRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	updated, err := h.Service.MigrateGuest(c, token.UID, request)
	if err != nil {
		switch err {
		case ErrNotGroupAdmin:
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case ErrGuestNotFound, ErrMemberNotFound:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("Could not migrate guest: %v\n", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		}
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Guest migrated",
		"updatedMatches": updated,
	})
}

func (h *httpHandler) deleteHandler(c *gin.Context) {
	token := c.MustGet("token").(*auth.Token)
	groupID := c.Param("group_id")

	if err := h.Service.DeleteGroup(c, token.UID, groupID); err != nil {
		if err == ErrNotGroupAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		log.Printf("Could not delete group: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted"})
}
