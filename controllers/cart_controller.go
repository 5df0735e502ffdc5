package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/example/cart-checkout-service/common/errors"
	"github.com/example/cart-checkout-service/common/logger"
	"github.com/example/cart-checkout-service/middleware"
	"github.com/example/cart-checkout-service/models"
)

// CartAPI is the service surface the HTTP layer depends on.
type CartAPI interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error)
	UpdateItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error)
	DeleteItem(ctx context.Context, userID, productID string) error
	Checkout(ctx context.Context, userID string) error
}

// IdempotencyAPI records checkout outcomes so a retried request with the
// same Idempotency-Key is answered without re-running the transaction.
// Reserve claims the key atomically before the checkout executes, so
// concurrent requests sharing a key cannot both run it.
type IdempotencyAPI interface {
	Reserve(ctx context.Context, key string) (bool, error)
	GetResult(ctx context.Context, key string) (string, error)
	SetResult(ctx context.Context, key, value string) error
	Release(ctx context.Context, key string) error
}

type CartController struct {
	service CartAPI
	idem    IdempotencyAPI
}

func NewCartController(service CartAPI, idem IdempotencyAPI) *CartController {
	return &CartController{
		service: service,
		idem:    idem,
	}
}

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// GetCart returns the current cart for a user
func (cc *CartController) GetCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	cart, err := cc.service.GetCart(c.Request.Context(), userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddItem appends a new line item to the cart
func (cc *CartController) AddItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload", "details": err.Error()})
		return
	}

	cart, err := cc.service.AddItem(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// UpdateItem sets the quantity of an existing line item
func (cc *CartController) UpdateItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	productID := c.Param("product_id")

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload", "details": err.Error()})
		return
	}

	cart, err := cc.service.UpdateItem(c.Request.Context(), userID, productID, req.Quantity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// DeleteItem removes a specific line item from the cart
func (cc *CartController) DeleteItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	productID := c.Param("product_id")

	if err := cc.service.DeleteItem(c.Request.Context(), userID, productID); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item removed"})
}

// Checkout debits the wallet and clears the cart atomically
func (cc *CartController) Checkout(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	ctx := c.Request.Context()

	idemKey := c.GetHeader("Idempotency-Key")
	reserved := false
	if idemKey != "" && cc.idem != nil {
		ok, err := cc.idem.Reserve(ctx, idemKey)
		if err != nil {
			logger.Log.Warn("idempotency reservation failed", zap.Error(err))
		} else if !ok {
			// the key is held: replay the recorded outcome, or refuse
			// while the original request is still in flight
			outcome, err := cc.idem.GetResult(ctx, idemKey)
			if err != nil {
				logger.Log.Warn("idempotency lookup failed", zap.Error(err))
			}
			if outcome != "" {
				c.Data(http.StatusOK, "application/json", []byte(outcome))
				return
			}
			apperrors.Respond(c, apperrors.Conflict("checkout already in progress"))
			return
		} else {
			reserved = true
		}
	}

	if err := cc.service.Checkout(ctx, userID); err != nil {
		if reserved {
			if relErr := cc.idem.Release(ctx, idemKey); relErr != nil {
				logger.Log.Warn("failed to release idempotency key", zap.Error(relErr))
			}
		}
		apperrors.Respond(c, err)
		return
	}

	body, _ := json.Marshal(gin.H{"message": "checkout completed"})
	if reserved {
		if err := cc.idem.SetResult(ctx, idemKey, string(body)); err != nil {
			logger.Log.Warn("failed to record idempotency key", zap.Error(err))
		}
	}
	c.Data(http.StatusOK, "application/json", body)
}
