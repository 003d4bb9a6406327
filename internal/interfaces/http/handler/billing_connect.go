package handler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/clientportal/backend/internal/infrastructure/billing"
	"github.com/clientportal/backend/internal/interfaces/http/middleware"
)

const oauthStateTTL = 10 * time.Minute

// BillingConnectHandler manages the OAuth connection between an admin's
// portal session and the billing provider. The state parameter is stored in
// Redis keyed to the initiating user, so the unauthenticated callback can be
// tied back to a session.
type BillingConnectHandler struct {
	BaseHandler
	client *billing.Client
	tokens *billing.RedisTokenStore
	redis  *redis.Client
}

// NewBillingConnectHandler creates a billing connect handler
func NewBillingConnectHandler(client *billing.Client, tokens *billing.RedisTokenStore, redisClient *redis.Client, logger *zap.Logger) *BillingConnectHandler {
	return &BillingConnectHandler{
		BaseHandler: NewBaseHandler(logger.Named("billing_connect_handler")),
		client:      client,
		tokens:      tokens,
		redis:       redisClient,
	}
}

// RegisterRoutes registers billing connection routes on the API group
func (h *BillingConnectHandler) RegisterRoutes(rg *gin.RouterGroup) {
	bill := rg.Group("/billing")
	{
		bill.GET("/connect", middleware.RequireAdmin(), h.Connect)
		bill.GET("/callback", h.Callback)
		bill.DELETE("/connection", middleware.RequireAdmin(), h.Disconnect)
	}
}

func stateKey(state string) string {
	return "billing:oauth_state:" + state
}

// Connect starts the OAuth flow and returns the provider authorization URL
func (h *BillingConnectHandler) Connect(c *gin.Context) {
	state := billing.NewState()
	userID := middleware.CurrentUserID(c)

	if err := h.redis.Set(c.Request.Context(), stateKey(state),
		strconv.FormatUint(uint64(userID), 10), oauthStateTTL).Err(); err != nil {
		h.HandleError(c, fmt.Errorf("store oauth state: %w", err))
		return
	}

	h.Success(c, gin.H{"authorize_url": h.client.AuthorizeURL(state)})
}

// Callback completes the OAuth flow: verifies the state, exchanges the code,
// and stores the token against the initiating user's session.
func (h *BillingConnectHandler) Callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		h.BadRequest(c, "Missing state or code")
		return
	}

	userID, err := h.consumeState(c.Request.Context(), state)
	if err != nil {
		h.BadRequest(c, "Unknown or expired state")
		return
	}

	token, err := h.client.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.tokens.Save(c.Request.Context(), userID, token); err != nil {
		h.HandleError(c, err)
		return
	}

	h.logger.Info("billing account connected", zap.Uint("user_id", userID))
	h.Success(c, gin.H{"connected": true})
}

// Disconnect drops the stored billing token for the current user
func (h *BillingConnectHandler) Disconnect(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if err := h.tokens.Delete(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.logger.Info("billing account disconnected", zap.Uint("user_id", userID))
	h.NoContent(c)
}

// consumeState resolves and deletes a stored OAuth state in one step
func (h *BillingConnectHandler) consumeState(ctx context.Context, state string) (uint, error) {
	raw, err := h.redis.GetDel(ctx, stateKey(state)).Result()
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
