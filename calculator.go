package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lg/diet-funnel-go-api/internal/funnel"
	"lg/diet-funnel-go-api/internal/nutrition"
)

// questionnairePath is the frontend page that follows the calculator.
const questionnairePath = "/formulario"

// postCalculator normalizes the calculator form, computes energy and macro
// targets, and saves them as the session's calculator-results blob.
// POST /api/funnel/calculator. Incomplete input answers 400 with the list of
// offending fields; nothing is computed or saved in that case.
func (h *Handler) postCalculator(c *gin.Context) {
	sessionID := c.GetString(sessionKey)

	var raw nutrition.RawInput
	if err := c.ShouldBindJSON(&raw); err != nil {
		h.metrics.step(funnel.KeyCalculator, outcomeInvalid)
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := nutrition.Normalize(raw)
	if err != nil {
		h.metrics.step(funnel.KeyCalculator, outcomeInvalid)
		var incomplete *nutrition.IncompleteError
		if errors.As(err, &incomplete) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "please enter a valid age, weight and height",
				"fields": incomplete.Fields,
			})
			return
		}
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	res := nutrition.Calculate(m)
	record := calculatorRecord{
		Metrics:    res.Metrics,
		Estimate:   res.Estimate,
		Macros:     res.Macros,
		Policy:     nutrition.MacroPolicy,
		ComputedAt: h.now().UTC(),
	}
	if err := h.carrier.Save(c, sessionID, funnel.KeyCalculator, record); err != nil {
		h.log.Error("save calculator results", zap.String("session", sessionID), zap.Error(err))
		h.metrics.step(funnel.KeyCalculator, outcomeError)
		apiError(c, http.StatusInternalServerError, "failed to save calculator results")
		return
	}

	h.metrics.calculations.WithLabelValues(string(m.Sex), string(m.Goal)).Inc()
	h.metrics.step(funnel.KeyCalculator, outcomeOK)
	c.JSON(http.StatusOK, newCalculatorResponse(record))
}

// getCalculator returns the session's last calculation.
// GET /api/funnel/calculator. 409 with a redirect when there is none.
func (h *Handler) getCalculator(c *gin.Context) {
	sessionID := c.GetString(sessionKey)

	record, err := funnel.Load[calculatorRecord](c, h.carrier, sessionID, funnel.KeyCalculator)
	if err != nil {
		if !funnelStateError(c, err) {
			h.log.Error("load calculator results", zap.String("session", sessionID), zap.Error(err))
			apiError(c, http.StatusInternalServerError, "failed to load calculator results")
		}
		return
	}
	c.JSON(http.StatusOK, newCalculatorResponse(record))
}

func newCalculatorResponse(r calculatorRecord) calculatorResponse {
	return calculatorResponse{
		Metrics:  r.Metrics,
		Estimate: r.Estimate,
		Macros:   r.Macros,
		Policy:   r.Policy,
		NextStep: questionnairePath,
	}
}
