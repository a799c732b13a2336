package main

import (
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lg/diet-funnel-go-api/internal/funnel"
	"lg/diet-funnel-go-api/internal/plans"
)

// paymentPath is the frontend page that follows the questionnaire.
const paymentPath = "/pagamento"

const defaultMealsPerDay = 4

// validate trims the request and converts it to a questionnaire. It returns
// the names of every missing or invalid field; the record is only usable
// when that list is empty.
func (r questionnaireRequest) validate() (questionnaire, []string) {
	var bad []string
	required := func(name, v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			bad = append(bad, name)
		}
		return v
	}

	q := questionnaire{
		Name:                  required("name", r.Name),
		Email:                 required("email", r.Email),
		Whatsapp:              required("whatsapp", r.Whatsapp),
		TrainingTime:          strings.TrimSpace(r.TrainingTime),
		CookingPreference:     required("preferencia_preparo", r.CookingPreference),
		DailyRoutine:          required("relato_rotina", r.DailyRoutine),
		FoodsLiked:            required("alimentos_gosta", r.FoodsLiked),
		FoodsDisliked:         required("alimentos_nao_gosta", r.FoodsDisliked),
		FoodsIndispensable:    strings.TrimSpace(r.FoodsIndispensable),
		AllergiesIntolerances: required("alergias_intolerancias", r.AllergiesIntolerances),
		FruitIntake:           required("frutas_consumo", r.FruitIntake),
		VegetableIntake:       required("legumes_consumo", r.VegetableIntake),
		GreensIntake:          required("hortalicas_consumo", r.GreensIntake),
		Supplements:           strings.TrimSpace(r.Supplements),
	}

	if q.Email != "" {
		if _, err := mail.ParseAddress(q.Email); err != nil {
			bad = append(bad, "email")
		}
	}
	if q.TrainingTime != "" {
		if _, err := time.Parse("15:04", q.TrainingTime); err != nil {
			bad = append(bad, "horario_treino")
		}
	}

	q.MealsPerDay = defaultMealsPerDay
	if s := strings.TrimSpace(string(r.MealsPerDay)); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 3 || n > 6 {
			bad = append(bad, "num_refeicoes")
		} else {
			q.MealsPerDay = n
		}
	}
	return q, bad
}

// postQuestionnaire validates the contact and anamnesis form, merges it with
// the session's calculator results and saves the user-data blob.
// POST /api/funnel/questionnaire?plan=basic|premium. Unknown or missing plans
// fall back to basic. Without calculator results the visitor is redirected
// to the start of the funnel (409).
func (h *Handler) postQuestionnaire(c *gin.Context) {
	sessionID := c.GetString(sessionKey)

	var body questionnaireRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.metrics.step(funnel.KeyUserData, outcomeInvalid)
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	q, bad := body.validate()
	if len(bad) > 0 {
		h.metrics.step(funnel.KeyUserData, outcomeInvalid)
		c.JSON(http.StatusBadRequest, gin.H{"error": "please fill in all required fields", "fields": bad})
		return
	}

	calc, err := funnel.Load[calculatorRecord](c, h.carrier, sessionID, funnel.KeyCalculator)
	if err != nil {
		if funnelStateError(c, err) {
			h.metrics.step(funnel.KeyUserData, outcomeMissingState)
			return
		}
		h.log.Error("load calculator results", zap.String("session", sessionID), zap.Error(err))
		h.metrics.step(funnel.KeyUserData, outcomeError)
		apiError(c, http.StatusInternalServerError, "failed to load calculator results")
		return
	}

	payload := funnelPayload{
		Plan:           h.catalog.Resolve(c.Query(plans.QueryParam)),
		ClientName:     q.Name,
		ClientEmail:    q.Email,
		ClientWhatsapp: q.Whatsapp,
		FormData: formData{
			UserMetrics:    calc.Metrics,
			EnergyEstimate: calc.Estimate,
			MacroBreakdown: calc.Macros,
			MacroPolicy:    calc.Policy,
			questionnaire:  q,
		},
		SubmittedAt: h.now().UTC(),
	}
	if err := h.carrier.Save(c, sessionID, funnel.KeyUserData, payload); err != nil {
		h.log.Error("save user data", zap.String("session", sessionID), zap.Error(err))
		h.metrics.step(funnel.KeyUserData, outcomeError)
		apiError(c, http.StatusInternalServerError, "failed to save questionnaire")
		return
	}

	h.metrics.step(funnel.KeyUserData, outcomeOK)
	c.JSON(http.StatusCreated, gin.H{"plan": payload.Plan, "next_step": paymentPath})
}
