package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rknair/cloudpuff-backend/internal/app/service"
	apperrors "github.com/rknair/cloudpuff-backend/internal/errors"
	"github.com/rknair/cloudpuff-backend/internal/middleware"
	"github.com/rknair/cloudpuff-backend/pkg/pos/clover"
)

// CloverController exposes the manual POS reconciliation endpoints.
// All of them are admin-only.
type CloverController struct {
	syncService service.SyncService
	pos         *clover.Client
}

func NewCloverController(syncService service.SyncService, pos *clover.Client) *CloverController {
	return &CloverController{
		syncService: syncService,
		pos:         pos,
	}
}

func respondSyncError(c *gin.Context, err error) {
	if errors.Is(err, clover.ErrNotConfigured) {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.PaymentNotConfigured, "POS integration is not configured")
		return
	}
	info := apperrors.ParseError(err, "sync")
	apperrors.RespondWithError(c, http.StatusBadGateway, info.Code, info.Message)
}

// GetStatus reports whether the POS integration is configured
// GET /api/clover/status
func (ctrl *CloverController) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"configured": ctrl.pos.IsConfigured(),
	})
}

// SyncProducts pulls inventory items from the POS
// POST /api/clover/sync/products
func (ctrl *CloverController) SyncProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	result, err := ctrl.syncService.SyncProducts(c.Request.Context())
	if err != nil {
		log.Error("Product sync failed", err, nil)
		respondSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

// SyncCategories pulls categories from the POS
// POST /api/clover/sync/categories
func (ctrl *CloverController) SyncCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	result, err := ctrl.syncService.SyncCategories(c.Request.Context())
	if err != nil {
		log.Error("Category sync failed", err, nil)
		respondSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

// SyncAll runs categories then products
// POST /api/clover/sync/all
func (ctrl *CloverController) SyncAll(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	result, err := ctrl.syncService.SyncAll(c.Request.Context())
	if err != nil {
		log.Error("Full sync failed", err, nil)
		respondSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}
