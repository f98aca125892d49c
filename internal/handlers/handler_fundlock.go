package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paisetrail/ledger_backend/internal/apperrors"
	portssvc "github.com/paisetrail/ledger_backend/internal/core/ports/services"
	"github.com/paisetrail/ledger_backend/internal/dto"
	"github.com/paisetrail/ledger_backend/internal/middleware"
)

// fundLockHandler handles HTTP requests for fund locks and wallets.
type fundLockHandler struct {
	fundLockService portssvc.FundLockSvcFacade
}

func newFundLockHandler(fundLockService portssvc.FundLockSvcFacade) *fundLockHandler {
	return &fundLockHandler{fundLockService: fundLockService}
}

// lockFunds godoc
// @Summary Reserve wallet funds
// @Description Creates an active lock against a user's wallet balance
// @Tags locks
// @Accept  json
// @Produce  json
// @Param   lock body dto.CreateLockRequest true "Lock details"
// @Success 201 {object} dto.LockResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /locks [post]
func (h *fundLockHandler) lockFunds(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for lockFunds", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	lock, err := h.fundLockService.LockFunds(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to lock funds", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to lock funds"})
		return
	}

	logger.Info("Funds locked", slog.String("lock_id", lock.LockID), slog.Int64("amount_paise", int64(lock.Amount)))
	c.JSON(http.StatusCreated, dto.ToLockResponse(lock))
}

// getLock godoc
// @Summary Get a fund lock
// @Tags locks
// @Produce  json
// @Param   lockID path string true "Lock ID"
// @Success 200 {object} dto.LockResponse
// @Failure 404 {object} map[string]string "Lock not found"
// @Router /locks/{lockID} [get]
func (h *fundLockHandler) getLock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	lockID := c.Param("lockID")

	lock, err := h.fundLockService.GetLockByID(c.Request.Context(), lockID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lock not found"})
			return
		}
		logger.Error("Failed to get lock", slog.String("error", err.Error()), slog.String("lock_id", lockID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lock"})
		return
	}

	c.JSON(http.StatusOK, dto.ToLockResponse(lock))
}

// listMyLocks godoc
// @Summary List the caller's active locks
// @Tags locks
// @Produce  json
// @Success 200 {array} dto.LockResponse
// @Router /locks [get]
func (h *fundLockHandler) listMyLocks(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	locks, err := h.fundLockService.ListActiveLocks(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list locks", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list locks"})
		return
	}

	resp := make([]dto.LockResponse, len(locks))
	for i := range locks {
		resp[i] = dto.ToLockResponse(&locks[i])
	}
	c.JSON(http.StatusOK, resp)
}

// releaseLock godoc
// @Summary Release an active lock
// @Description Returns the locked amount to the wallet's available balance
// @Tags locks
// @Accept  json
// @Produce  json
// @Param   lockID path string true "Lock ID"
// @Param   release body dto.ReleaseLockRequest true "Release reason"
// @Success 200 {object} dto.LockResponse
// @Failure 404 {object} map[string]string "Lock not found"
// @Failure 409 {object} map[string]string "Lock is not active"
// @Router /locks/{lockID}/release [post]
func (h *fundLockHandler) releaseLock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	lockID := c.Param("lockID")

	var req dto.ReleaseLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	lock, err := h.fundLockService.ReleaseLock(c.Request.Context(), lockID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Lock not found"})
		case errors.Is(err, apperrors.ErrConflict):
			logger.Warn("Lock release rejected", slog.String("lock_id", lockID), slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to release lock", slog.String("error", err.Error()), slog.String("lock_id", lockID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release lock"})
		}
		return
	}

	logger.Info("Lock released", slog.String("lock_id", lockID))
	c.JSON(http.StatusOK, dto.ToLockResponse(lock))
}

// sweepLocks godoc
// @Summary Expire overdue locks
// @Description Expires every active lock past its deadline; also run periodically in-process
// @Tags locks
// @Produce  json
// @Success 200 {object} dto.SweepResponse
// @Router /locks/sweep [post]
func (h *fundLockHandler) sweepLocks(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	resp, err := h.fundLockService.SweepExpiredLocks(c.Request.Context(), time.Now().UTC())
	if err != nil {
		logger.Error("Failed to sweep locks", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sweep locks"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getWallet godoc
// @Summary Get the caller's wallet
// @Tags wallets
// @Produce  json
// @Success 200 {object} dto.WalletResponse
// @Router /wallet [get]
func (h *fundLockHandler) getWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	wallet, err := h.fundLockService.GetWallet(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to get wallet", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve wallet"})
		return
	}

	c.JSON(http.StatusOK, dto.ToWalletResponse(wallet))
}

// registerFundLockRoutes registers fund lock and wallet routes.
func registerFundLockRoutes(group *gin.RouterGroup, fundLockService portssvc.FundLockSvcFacade) {
	h := newFundLockHandler(fundLockService)

	locks := group.Group("/locks")
	{
		locks.POST("", h.lockFunds)
		locks.GET("", h.listMyLocks)
		locks.POST("/sweep", h.sweepLocks)
		locks.GET("/:lockID", h.getLock)
		locks.POST("/:lockID/release", h.releaseLock)
	}

	group.GET("/wallet", h.getWallet)
}
