package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paisetrail/ledger_backend/internal/apperrors"
	portssvc "github.com/paisetrail/ledger_backend/internal/core/ports/services"
	"github.com/paisetrail/ledger_backend/internal/core/services"
	"github.com/paisetrail/ledger_backend/internal/dto"
	"github.com/paisetrail/ledger_backend/internal/middleware"
)

// sagaHandler handles HTTP requests for payment saga orchestration.
type sagaHandler struct {
	sagaService portssvc.SagaSvcFacade
}

func newSagaHandler(sagaService portssvc.SagaSvcFacade) *sagaHandler {
	return &sagaHandler{sagaService: sagaService}
}

func respondSagaError(c *gin.Context, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Saga not found"})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidTransition), errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Saga transition rejected", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnknownSagaStep), errors.Is(err, services.ErrTooManySteps), errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("Saga operation failed", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// startSaga godoc
// @Summary Start a payment saga
// @Description Creates the saga tracking record for a multi-step payment workflow
// @Tags sagas
// @Accept  json
// @Produce  json
// @Param   saga body dto.CreateSagaRequest true "Saga details"
// @Success 201 {object} dto.SagaResponse
// @Failure 409 {object} map[string]string "A saga already exists for this payment"
// @Router /sagas [post]
func (h *sagaHandler) startSaga(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateSagaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for startSaga", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	saga, err := h.sagaService.StartSaga(c.Request.Context(), req, userID)
	if err != nil {
		respondSagaError(c, logger, err, "start saga")
		return
	}

	logger.Info("Saga started", slog.String("saga_id", saga.SagaID), slog.String("payment_id", saga.PaymentID))
	c.JSON(http.StatusCreated, dto.ToSagaResponse(saga))
}

// getSaga godoc
// @Summary Get a saga
// @Tags sagas
// @Produce  json
// @Param   sagaID path string true "Saga ID"
// @Success 200 {object} dto.SagaResponse
// @Failure 404 {object} map[string]string "Saga not found"
// @Router /sagas/{sagaID} [get]
func (h *sagaHandler) getSaga(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sagaID := c.Param("sagaID")

	saga, err := h.sagaService.GetSagaByID(c.Request.Context(), sagaID)
	if err != nil {
		respondSagaError(c, logger, err, "retrieve saga")
		return
	}
	c.JSON(http.StatusOK, dto.ToSagaResponse(saga))
}

// getSagaByPayment godoc
// @Summary Get the saga driving a payment
// @Tags sagas
// @Produce  json
// @Param   paymentID path string true "Payment ID"
// @Success 200 {object} dto.SagaResponse
// @Failure 404 {object} map[string]string "Saga not found"
// @Router /payments/{paymentID}/saga [get]
func (h *sagaHandler) getSagaByPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("paymentID")

	saga, err := h.sagaService.GetSagaByPaymentID(c.Request.Context(), paymentID)
	if err != nil {
		respondSagaError(c, logger, err, "retrieve saga")
		return
	}
	c.JSON(http.StatusOK, dto.ToSagaResponse(saga))
}

// completeStep godoc
// @Summary Record a completed saga step
// @Description Appends the step with its compensation references to the saga's log
// @Tags sagas
// @Accept  json
// @Produce  json
// @Param   sagaID path string true "Saga ID"
// @Param   step body dto.CompleteStepRequest true "Step details"
// @Success 200 {object} dto.SagaResponse
// @Failure 400 {object} map[string]string "Unknown step name"
// @Failure 409 {object} map[string]string "Saga is not in progress"
// @Router /sagas/{sagaID}/steps [post]
func (h *sagaHandler) completeStep(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sagaID := c.Param("sagaID")

	var req dto.CompleteStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	saga, err := h.sagaService.CompleteStep(c.Request.Context(), sagaID, req, userID)
	if err != nil {
		respondSagaError(c, logger, err, "complete step")
		return
	}

	logger.Info("Saga step completed", slog.String("saga_id", sagaID), slog.String("step", req.Name))
	c.JSON(http.StatusOK, dto.ToSagaResponse(saga))
}

// completeSaga godoc
// @Summary Complete a saga
// @Description Marks a saga whose steps all finished as completed
// @Tags sagas
// @Produce  json
// @Param   sagaID path string true "Saga ID"
// @Success 200 {object} dto.SagaResponse
// @Failure 409 {object} map[string]string "Steps remain or saga is not in progress"
// @Router /sagas/{sagaID}/complete [post]
func (h *sagaHandler) completeSaga(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sagaID := c.Param("sagaID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	saga, err := h.sagaService.CompleteSaga(c.Request.Context(), sagaID, userID)
	if err != nil {
		respondSagaError(c, logger, err, "complete saga")
		return
	}

	logger.Info("Saga completed", slog.String("saga_id", sagaID))
	c.JSON(http.StatusOK, dto.ToSagaResponse(saga))
}

// failSaga godoc
// @Summary Mark a saga as failed
// @Tags sagas
// @Accept  json
// @Produce  json
// @Param   sagaID path string true "Saga ID"
// @Param   failure body dto.FailSagaRequest true "Failed step and reason"
// @Success 200 {object} dto.SagaResponse
// @Router /sagas/{sagaID}/fail [post]
func (h *sagaHandler) failSaga(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sagaID := c.Param("sagaID")

	var req dto.FailSagaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	saga, err := h.sagaService.FailSaga(c.Request.Context(), sagaID, req, userID)
	if err != nil {
		respondSagaError(c, logger, err, "fail saga")
		return
	}

	logger.Warn("Saga failed", slog.String("saga_id", sagaID), slog.String("step", req.StepName))
	c.JSON(http.StatusOK, dto.ToSagaResponse(saga))
}

// rollbackSaga godoc
// @Summary Roll back a failed saga
// @Description Compensates every completed step in reverse order; failing compensators are recorded, not fatal
// @Tags sagas
// @Produce  json
// @Param   sagaID path string true "Saga ID"
// @Success 200 {object} dto.SagaResponse
// @Failure 409 {object} map[string]string "Saga cannot roll back from its current status"
// @Router /sagas/{sagaID}/rollback [post]
func (h *sagaHandler) rollbackSaga(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sagaID := c.Param("sagaID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	saga, err := h.sagaService.Rollback(c.Request.Context(), sagaID, userID)
	if err != nil {
		respondSagaError(c, logger, err, "roll back saga")
		return
	}

	logger.Info("Saga rolled back", slog.String("saga_id", sagaID), slog.Int("compensated_steps", len(saga.RollbackSteps)))
	c.JSON(http.StatusOK, dto.ToSagaResponse(saga))
}

// registerSagaRoutes registers saga orchestration routes.
func registerSagaRoutes(group *gin.RouterGroup, sagaService portssvc.SagaSvcFacade) {
	h := newSagaHandler(sagaService)

	sagas := group.Group("/sagas")
	{
		sagas.POST("", h.startSaga)
		sagas.GET("/:sagaID", h.getSaga)
		sagas.POST("/:sagaID/steps", h.completeStep)
		sagas.POST("/:sagaID/complete", h.completeSaga)
		sagas.POST("/:sagaID/fail", h.failSaga)
		sagas.POST("/:sagaID/rollback", h.rollbackSaga)
	}

	group.GET("/payments/:paymentID/saga", h.getSagaByPayment)
}
