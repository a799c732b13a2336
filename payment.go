package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lg/diet-funnel-go-api/internal/checkout"
	"lg/diet-funnel-go-api/internal/funnel"
)

// loadPayload fetches the session's user-data blob, answering the request
// itself on failure. ok=false means the handler must return.
func (h *Handler) loadPayload(c *gin.Context, sessionID string) (funnelPayload, bool) {
	payload, err := funnel.Load[funnelPayload](c, h.carrier, sessionID, funnel.KeyUserData)
	if err != nil {
		if !funnelStateError(c, err) {
			h.log.Error("load user data", zap.String("session", sessionID), zap.Error(err))
			apiError(c, http.StatusInternalServerError, "failed to load funnel data")
		}
		return funnelPayload{}, false
	}
	return payload, true
}

// getPayment returns what the payment page needs to render: the plan chosen
// earlier and who is paying. GET /api/funnel/payment.
func (h *Handler) getPayment(c *gin.Context) {
	sessionID := c.GetString(sessionKey)
	payload, ok := h.loadPayload(c, sessionID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, paymentSummary{
		SelectedPlan:  payload.Plan,
		ClientName:    payload.ClientName,
		ClientEmail:   payload.ClientEmail,
		FinalCalories: payload.FormData.FinalCalories,
	})
}

// postCheckout asks the payment API for a checkout page and returns its URL;
// the client redirects the browser there.
// POST /api/funnel/checkout. Body: { "planType"?: "basic"|"premium" }.
// Remote failures answer 502 with the API's own message so the visitor can
// read it and retry; a timeout answers 504. Nothing is retried here.
func (h *Handler) postCheckout(c *gin.Context) {
	sessionID := c.GetString(sessionKey)

	var body checkoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			apiError(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	payload, ok := h.loadPayload(c, sessionID)
	if !ok {
		h.metrics.step("checkout", outcomeMissingState)
		return
	}

	planType := body.PlanType
	if planType == "" {
		planType = payload.Plan
	}
	if _, found := h.catalog.Find(planType); !found {
		apiError(c, http.StatusBadRequest, "planType must be one of: basic, premium")
		return
	}

	start := time.Now()
	resp, err := h.checkout.CreateCheckout(c.Request.Context(), checkout.Request{
		PlanType:       planType,
		ClientName:     payload.ClientName,
		ClientEmail:    payload.ClientEmail,
		ClientWhatsapp: payload.ClientWhatsapp,
		FormData:       payload.FormData,
	})
	h.metrics.checkoutDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		var remote *checkout.RemoteError
		switch {
		case errors.As(err, &remote):
			h.log.Warn("checkout rejected",
				zap.String("session", sessionID), zap.String("plan", planType),
				zap.Int("status", remote.StatusCode), zap.String("message", remote.Message))
			h.metrics.checkouts.WithLabelValues(planType, outcomeRemoteError).Inc()
			apiError(c, http.StatusBadGateway, remote.Message)
		case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
			h.log.Warn("checkout timed out", zap.String("session", sessionID), zap.Error(err))
			h.metrics.checkouts.WithLabelValues(planType, outcomeError).Inc()
			apiError(c, http.StatusGatewayTimeout, "the payment service did not respond, please try again")
		default:
			h.log.Error("checkout request failed", zap.String("session", sessionID), zap.Error(err))
			h.metrics.checkouts.WithLabelValues(planType, outcomeError).Inc()
			apiError(c, http.StatusBadGateway, "could not reach the payment service, please try again")
		}
		return
	}

	h.log.Info("checkout created", zap.String("session", sessionID), zap.String("plan", planType))
	h.metrics.checkouts.WithLabelValues(planType, outcomeOK).Inc()
	c.JSON(http.StatusOK, gin.H{"checkoutUrl": resp.CheckoutURL})
}

// isTimeout reports whether err (or anything it wraps) is a network timeout.
func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
