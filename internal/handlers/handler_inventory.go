package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paisetrail/ledger_backend/internal/apperrors"
	portssvc "github.com/paisetrail/ledger_backend/internal/core/ports/services"
	"github.com/paisetrail/ledger_backend/internal/dto"
	"github.com/paisetrail/ledger_backend/internal/middleware"
)

// inventoryHandler handles HTTP requests for bulk purchase lots and their
// allocation logs.
type inventoryHandler struct {
	inventoryService portssvc.InventorySvcFacade
}

func newInventoryHandler(inventoryService portssvc.InventorySvcFacade) *inventoryHandler {
	return &inventoryHandler{inventoryService: inventoryService}
}

// createLot godoc
// @Summary Record a bulk share purchase
// @Description Persists a lot with its provenance and the ledger entry proving the capital outflow
// @Tags inventory
// @Accept  json
// @Produce  json
// @Param   lot body dto.CreateLotRequest true "Lot details"
// @Success 201 {object} dto.LotResponse
// @Failure 400 {object} map[string]string "Invalid request or provenance"
// @Router /lots [post]
func (h *inventoryHandler) createLot(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createLot", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	lot, err := h.inventoryService.CreateLot(c.Request.Context(), req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrProvenance), errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Rejected lot", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create lot", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create lot"})
		}
		return
	}

	logger.Info("Lot created", slog.String("purchase_id", lot.PurchaseID))
	c.JSON(http.StatusCreated, dto.ToLotResponse(lot))
}

// getLot godoc
// @Summary Get a bulk purchase lot
// @Tags inventory
// @Produce  json
// @Param   purchaseID path string true "Purchase ID"
// @Success 200 {object} dto.LotResponse
// @Failure 404 {object} map[string]string "Lot not found"
// @Router /lots/{purchaseID} [get]
func (h *inventoryHandler) getLot(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	purchaseID := c.Param("purchaseID")

	lot, err := h.inventoryService.GetLotByID(c.Request.Context(), purchaseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lot not found"})
			return
		}
		logger.Error("Failed to get lot", slog.String("error", err.Error()), slog.String("purchase_id", purchaseID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lot"})
		return
	}

	c.JSON(http.StatusOK, dto.ToLotResponse(lot))
}

// listLots godoc
// @Summary List bulk purchase lots
// @Tags inventory
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListLotsResponse
// @Router /lots [get]
func (h *inventoryHandler) listLots(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListLotsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := h.inventoryService.ListLots(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to list lots", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list lots"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// allocate godoc
// @Summary Allocate value out of a lot
// @Description Moves value from the lot's remaining pool to a destination record, writing the audit log
// @Tags inventory
// @Accept  json
// @Produce  json
// @Param   purchaseID path string true "Purchase ID"
// @Param   allocation body dto.AllocateRequest true "Allocation details"
// @Success 201 {object} dto.AllocationLogResponse
// @Failure 404 {object} map[string]string "Lot not found"
// @Failure 409 {object} map[string]string "Insufficient remaining value"
// @Router /lots/{purchaseID}/allocations [post]
func (h *inventoryHandler) allocate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	purchaseID := c.Param("purchaseID")

	var req dto.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for allocate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	log, err := h.inventoryService.Allocate(c.Request.Context(), purchaseID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Lot not found"})
		case errors.Is(err, apperrors.ErrInsufficientInventory):
			logger.Warn("Allocation rejected", slog.String("purchase_id", purchaseID), slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to allocate", slog.String("error", err.Error()), slog.String("purchase_id", purchaseID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate"})
		}
		return
	}

	logger.Info("Allocation recorded", slog.String("log_id", log.LogID), slog.String("purchase_id", purchaseID))
	c.JSON(http.StatusCreated, dto.ToAllocationLogResponse(log))
}

// listLotAllocations godoc
// @Summary List a lot's allocation history
// @Tags inventory
// @Produce  json
// @Param   purchaseID path string true "Purchase ID"
// @Success 200 {array} dto.AllocationLogResponse
// @Router /lots/{purchaseID}/allocations [get]
func (h *inventoryHandler) listLotAllocations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	purchaseID := c.Param("purchaseID")

	logs, err := h.inventoryService.ListLotAllocations(c.Request.Context(), purchaseID)
	if err != nil {
		logger.Error("Failed to list allocations", slog.String("error", err.Error()), slog.String("purchase_id", purchaseID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list allocations"})
		return
	}

	resp := make([]dto.AllocationLogResponse, len(logs))
	for i := range logs {
		resp[i] = dto.ToAllocationLogResponse(&logs[i])
	}
	c.JSON(http.StatusOK, resp)
}

// getAllocation godoc
// @Summary Get an allocation log
// @Tags inventory
// @Produce  json
// @Param   logID path string true "Allocation log ID"
// @Success 200 {object} dto.AllocationLogResponse
// @Failure 404 {object} map[string]string "Allocation log not found"
// @Router /allocations/{logID} [get]
func (h *inventoryHandler) getAllocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logID := c.Param("logID")

	log, err := h.inventoryService.GetAllocationLog(c.Request.Context(), logID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Allocation log not found"})
			return
		}
		logger.Error("Failed to get allocation log", slog.String("error", err.Error()), slog.String("log_id", logID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve allocation log"})
		return
	}

	c.JSON(http.StatusOK, dto.ToAllocationLogResponse(log))
}

// reverseAllocation godoc
// @Summary Reverse an allocation
// @Description Marks the log reversed, restores the value onto the lot and posts a compensating ledger entry
// @Tags inventory
// @Accept  json
// @Produce  json
// @Param   logID path string true "Allocation log ID"
// @Param   reversal body dto.ReverseAllocationRequest true "Reversal reason"
// @Success 204 "Allocation reversed"
// @Failure 404 {object} map[string]string "Allocation log not found"
// @Failure 409 {object} map[string]string "Allocation already reversed"
// @Router /allocations/{logID}/reverse [post]
func (h *inventoryHandler) reverseAllocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logID := c.Param("logID")

	var req dto.ReverseAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.inventoryService.ReverseAllocation(c.Request.Context(), logID, req.Reason, userID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Allocation log not found"})
		case errors.Is(err, apperrors.ErrImmutableLog):
			logger.Warn("Allocation reversal rejected", slog.String("log_id", logID), slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to reverse allocation", slog.String("error", err.Error()), slog.String("log_id", logID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reverse allocation"})
		}
		return
	}

	logger.Info("Allocation reversed", slog.String("log_id", logID))
	c.Status(http.StatusNoContent)
}

// registerInventoryRoutes registers lot and allocation routes.
func registerInventoryRoutes(group *gin.RouterGroup, inventoryService portssvc.InventorySvcFacade) {
	h := newInventoryHandler(inventoryService)

	lots := group.Group("/lots")
	{
		lots.POST("", h.createLot)
		lots.GET("", h.listLots)
		lots.GET("/:purchaseID", h.getLot)
		lots.POST("/:purchaseID/allocations", h.allocate)
		lots.GET("/:purchaseID/allocations", h.listLotAllocations)
	}

	allocations := group.Group("/allocations")
	{
		allocations.GET("/:logID", h.getAllocation)
		allocations.POST("/:logID/reverse", h.reverseAllocation)
	}
}
