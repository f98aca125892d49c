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

// paymentHandler drives payments through their lifecycle over HTTP.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

func newPaymentHandler(paymentService portssvc.PaymentSvcFacade) *paymentHandler {
	return &paymentHandler{paymentService: paymentService}
}

// respondPaymentError maps payment service errors onto HTTP statuses. Every
// lifecycle endpoint shares the same failure surface.
func respondPaymentError(c *gin.Context, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
	case errors.Is(err, apperrors.ErrInvalidTransition), errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Payment transition rejected", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrRefundExceedsRefundable), errors.Is(err, services.ErrChargebackExceedsAmount), errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("Payment operation failed", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// createPayment godoc
// @Summary Create a payment
// @Description Records a new payment in pending status
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   payment body dto.CreatePaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /payments [post]
func (h *paymentHandler) createPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), req, userID)
	if err != nil {
		respondPaymentError(c, logger, err, "create payment")
		return
	}

	logger.Info("Payment created", slog.String("payment_id", payment.PaymentID))
	c.JSON(http.StatusCreated, dto.ToPaymentResponse(payment))
}

// getPayment godoc
// @Summary Get a payment
// @Tags payments
// @Produce  json
// @Param   paymentID path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Failure 404 {object} map[string]string "Payment not found"
// @Router /payments/{paymentID} [get]
func (h *paymentHandler) getPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("paymentID")

	payment, err := h.paymentService.GetPaymentByID(c.Request.Context(), paymentID)
	if err != nil {
		respondPaymentError(c, logger, err, "retrieve payment")
		return
	}

	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// listMyPayments godoc
// @Summary List the caller's payments
// @Tags payments
// @Produce  json
// @Success 200 {object} dto.ListPaymentsResponse
// @Router /payments [get]
func (h *paymentHandler) listMyPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payments, err := h.paymentService.ListPaymentsByUser(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list payments", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list payments"})
		return
	}

	resp := dto.ListPaymentsResponse{Payments: make([]dto.PaymentResponse, len(payments))}
	for i := range payments {
		resp.Payments[i] = dto.ToPaymentResponse(&payments[i])
	}
	c.JSON(http.StatusOK, resp)
}

// startProcessing godoc
// @Summary Move a payment to processing
// @Tags payments
// @Produce  json
// @Param   paymentID path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Failure 409 {object} map[string]string "Invalid transition"
// @Router /payments/{paymentID}/process [post]
func (h *paymentHandler) startProcessing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("paymentID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.StartProcessing(c.Request.Context(), paymentID, userID)
	if err != nil {
		respondPaymentError(c, logger, err, "start processing")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// markPaid godoc
// @Summary Mark a payment as paid
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   paymentID path string true "Payment ID"
// @Param   capture body dto.MarkPaidRequest true "Gateway capture details"
// @Success 200 {object} dto.PaymentResponse
// @Failure 409 {object} map[string]string "Invalid transition"
// @Router /payments/{paymentID}/paid [post]
func (h *paymentHandler) markPaid(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("paymentID")

	var req dto.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.MarkPaid(c.Request.Context(), paymentID, req, userID)
	if err != nil {
		respondPaymentError(c, logger, err, "mark paid")
		return
	}

	logger.Info("Payment marked paid", slog.String("payment_id", paymentID))
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// failPayment godoc
// @Summary Mark a payment as failed
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   paymentID path string true "Payment ID"
// @Param   failure body dto.FailPaymentRequest true "Failure reason"
// @Success 200 {object} dto.PaymentResponse
// @Router /payments/{paymentID}/fail [post]
func (h *paymentHandler) failPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("paymentID")

	var req dto.FailPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.FailPayment(c.Request.Context(), paymentID, req, userID)
	if err != nil {
		respondPaymentError(c, logger, err, "fail payment")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// cancelPayment godoc
// @Summary Cancel a payment
// @Tags payments
// @Produce  json
// @Param   paymentID path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Router /payments/{paymentID}/cancel [post]
func (h *paymentHandler) cancelPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("paymentID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.CancelPayment(c.Request.Context(), paymentID, userID)
	if err != nil {
		respondPaymentError(c, logger, err, "cancel payment")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// settlePayment godoc
// @Summary Settle a paid payment
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   paymentID path string true "Payment ID"
// @Param   settlement body dto.SettlePaymentRequest true "Settlement details"
// @Success 200 {object} dto.PaymentResponse
// @Router /payments/{paymentID}/settle [post]
func (h *paymentHandler) settlePayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("paymentID")

	var req dto.SettlePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.SettlePayment(c.Request.Context(), paymentID, req, userID)
	if err != nil {
		respondPaymentError(c, logger, err, "settle payment")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// refundPayment godoc
// @Summary Refund a payment
// @Description Refunds up to the refundable balance and posts the matching ledger entry
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   paymentID path string true "Payment ID"
// @Param   refund body dto.RefundRequest true "Refund details"
// @Success 200 {object} dto.PaymentResponse
// @Failure 400 {object} map[string]string "Refund exceeds refundable balance"
// @Router /payments/{paymentID}/refund [post]
func (h *paymentHandler) refundPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("paymentID")

	var req dto.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.RefundPayment(c.Request.Context(), paymentID, req, userID)
	if err != nil {
		respondPaymentError(c, logger, err, "refund payment")
		return
	}

	logger.Info("Payment refunded", slog.String("payment_id", paymentID), slog.Int64("amount_paise", req.AmountPaise))
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// raiseChargeback godoc
// @Summary Raise a chargeback
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   paymentID path string true "Payment ID"
// @Param   chargeback body dto.ChargebackRequest true "Chargeback details"
// @Success 200 {object} dto.PaymentResponse
// @Router /payments/{paymentID}/chargeback [post]
func (h *paymentHandler) raiseChargeback(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("paymentID")

	var req dto.ChargebackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.RaiseChargeback(c.Request.Context(), paymentID, req, userID)
	if err != nil {
		respondPaymentError(c, logger, err, "raise chargeback")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// confirmChargeback godoc
// @Summary Confirm a pending chargeback
// @Description Finalizes the dispute and posts the loss entry. Safe to retry; repeats are no-ops.
// @Tags payments
// @Produce  json
// @Param   paymentID path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Router /payments/{paymentID}/chargeback/confirm [post]
func (h *paymentHandler) confirmChargeback(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("paymentID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, confirmed, err := h.paymentService.ConfirmChargeback(c.Request.Context(), paymentID, userID)
	if err != nil {
		respondPaymentError(c, logger, err, "confirm chargeback")
		return
	}

	if confirmed {
		logger.Info("Chargeback confirmed", slog.String("payment_id", paymentID))
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// resolveChargeback godoc
// @Summary Resolve a chargeback in the merchant's favor
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   paymentID path string true "Payment ID"
// @Param   resolution body dto.ResolveChargebackRequest true "Status to restore"
// @Success 200 {object} dto.PaymentResponse
// @Router /payments/{paymentID}/chargeback/resolve [post]
func (h *paymentHandler) resolveChargeback(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("paymentID")

	var req dto.ResolveChargebackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.ResolveChargeback(c.Request.Context(), paymentID, req, userID)
	if err != nil {
		respondPaymentError(c, logger, err, "resolve chargeback")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// registerPaymentRoutes registers payment lifecycle routes.
func registerPaymentRoutes(group *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade) {
	h := newPaymentHandler(paymentService)

	payments := group.Group("/payments")
	{
		payments.POST("", h.createPayment)
		payments.GET("", h.listMyPayments)
		payments.GET("/:paymentID", h.getPayment)
		payments.POST("/:paymentID/process", h.startProcessing)
		payments.POST("/:paymentID/paid", h.markPaid)
		payments.POST("/:paymentID/fail", h.failPayment)
		payments.POST("/:paymentID/cancel", h.cancelPayment)
		payments.POST("/:paymentID/settle", h.settlePayment)
		payments.POST("/:paymentID/refund", h.refundPayment)
		payments.POST("/:paymentID/chargeback", h.raiseChargeback)
		payments.POST("/:paymentID/chargeback/confirm", h.confirmChargeback)
		payments.POST("/:paymentID/chargeback/resolve", h.resolveChargeback)
	}
}
