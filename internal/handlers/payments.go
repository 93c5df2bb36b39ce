package handlers

import (
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"evmapp/internal/errors"
	"evmapp/internal/models"
)

// webhookSignatureHeader carries the gateway's HMAC over the raw body.
const webhookSignatureHeader = "X-Razorpay-Signature"

// paymentError renders a taxonomy failure for the payment endpoints.
func paymentError(c *gin.Context, status int, reason string) {
	c.JSON(status, gin.H{"status": "error", "reason": reason})
}

// ConfirmPayment - POST /api/payments/confirm
// Settles a payment reported by the checkout client. This endpoint carries
// the full error taxonomy: malformed JSON, missing fields, bad signature and
// unknown order each get a distinct reason code.
func (h *Handlers) ConfirmPayment(c *gin.Context) {
	var req models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		paymentError(c, http.StatusBadRequest, errors.ReasonInvalidJSON)
		return
	}

	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		paymentError(c, http.StatusBadRequest, errors.ReasonMissingFields)
		return
	}

	err := h.services.Payments.Confirm(c.Request.Context(), &req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	case err == errors.ErrSignatureMismatch:
		slog.Warn("Payment signature verification failed",
			"order_id", req.RazorpayOrderID, "payment_id", req.RazorpayPaymentID)
		paymentError(c, http.StatusBadRequest, errors.ReasonSignatureMismatch)
	case err == errors.ErrOrderNotFound:
		paymentError(c, http.StatusNotFound, errors.ReasonOrderNotFound)
	default:
		slog.Error("Failed to confirm payment",
			"order_id", req.RazorpayOrderID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "reason": "internal_error"})
	}
}

// PaymentWebhook - POST /api/payments/webhook
// The signature covers the raw body, so the body is read before any JSON
// parsing. Once the signature checks out, a bad payload is rejected with a
// 400 while internal failures return a 500 so the gateway redelivers.
func (h *Handlers) PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		paymentError(c, http.StatusBadRequest, errors.ReasonInvalidJSON)
		return
	}

	signature := c.GetHeader(webhookSignatureHeader)
	if signature == "" {
		paymentError(c, http.StatusBadRequest, errors.ReasonMissingFields)
		return
	}

	err = h.services.Payments.HandleWebhook(c.Request.Context(), body, signature)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	case err == errors.ErrSignatureMismatch:
		slog.Warn("Webhook signature verification failed")
		paymentError(c, http.StatusBadRequest, errors.ReasonSignatureMismatch)
	case stderrors.Is(err, errors.ErrInvalidPayload):
		slog.Warn("Webhook payload could not be parsed", "error", err)
		paymentError(c, http.StatusBadRequest, errors.ReasonInvalidJSON)
	default:
		slog.Error("Failed to process webhook", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "reason": "internal_error"})
	}
}

// ListPayments - GET /api/payments
func (h *Handlers) ListPayments(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", models.PaymentStatusCreated, models.PaymentStatusCaptured, models.PaymentStatusFailed:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment status"})
		return
	}

	payments, err := h.services.Payments.List(c.Request.Context(), status)
	if err != nil {
		slog.Error("Failed to list payments", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list payments"})
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}

	c.JSON(http.StatusOK, payments)
}
