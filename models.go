package main

import (
	"time"

	"lg/diet-funnel-go-api/internal/nutrition"
)

/* ─── Persisted funnel blobs ─────────────────────────────────────────── */

// calculatorRecord is the calculator-results blob. It is written on every
// successful calculation and read back by the questionnaire step.
type calculatorRecord struct {
	Metrics    nutrition.UserMetrics    `json:"metrics"`
	Estimate   nutrition.EnergyEstimate `json:"estimate"`
	Macros     nutrition.MacroBreakdown `json:"macros"`
	Policy     string                   `json:"macro_policy"`
	ComputedAt time.Time                `json:"computed_at"`
}

// questionnaire is the anamnesis form. Field names follow the form inputs so
// the payment API receives them unchanged inside formData.
type questionnaire struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Whatsapp string `json:"whatsapp"`

	TrainingTime          string `json:"horario_treino,omitempty"` // HH:MM
	MealsPerDay           int    `json:"num_refeicoes"`
	CookingPreference     string `json:"preferencia_preparo"`
	DailyRoutine          string `json:"relato_rotina"`
	FoodsLiked            string `json:"alimentos_gosta"`
	FoodsDisliked         string `json:"alimentos_nao_gosta"`
	FoodsIndispensable    string `json:"alimentos_indispensaveis,omitempty"`
	AllergiesIntolerances string `json:"alergias_intolerancias"`
	FruitIntake           string `json:"frutas_consumo"`
	VegetableIntake       string `json:"legumes_consumo"`
	GreensIntake          string `json:"hortalicas_consumo"`
	Supplements           string `json:"suplementos,omitempty"`
}

// formData is the merged calculator + questionnaire record. The embedded
// structs flatten into one JSON object, so the wire shape matches a shallow
// merge of the two blobs.
type formData struct {
	nutrition.UserMetrics
	nutrition.EnergyEstimate
	nutrition.MacroBreakdown
	MacroPolicy string `json:"macro_policy"`
	questionnaire
}

// funnelPayload is the user-data blob: everything the payment step needs.
type funnelPayload struct {
	Plan           string    `json:"plan"`
	ClientName     string    `json:"clientName"`
	ClientEmail    string    `json:"clientEmail"`
	ClientWhatsapp string    `json:"clientWhatsapp"`
	FormData       formData  `json:"formData"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

/* ─── Request / Response types ───────────────────────────────────────── */

// calculatorResponse is returned by POST and GET /api/funnel/calculator.
type calculatorResponse struct {
	Metrics  nutrition.UserMetrics    `json:"metrics"`
	Estimate nutrition.EnergyEstimate `json:"estimate"`
	Macros   nutrition.MacroBreakdown `json:"macros"`
	Policy   string                   `json:"macro_policy"`
	NextStep string                   `json:"next_step"`
}

// questionnaireRequest is the body of POST /api/funnel/questionnaire. Meals
// per day arrives as a select value, so it is accepted as a string or number.
type questionnaireRequest struct {
	Name                  string              `json:"name"`
	Email                 string              `json:"email"`
	Whatsapp              string              `json:"whatsapp"`
	TrainingTime          string              `json:"horario_treino"`
	MealsPerDay           nutrition.FormValue `json:"num_refeicoes"`
	CookingPreference     string              `json:"preferencia_preparo"`
	DailyRoutine          string              `json:"relato_rotina"`
	FoodsLiked            string              `json:"alimentos_gosta"`
	FoodsDisliked         string              `json:"alimentos_nao_gosta"`
	FoodsIndispensable    string              `json:"alimentos_indispensaveis"`
	AllergiesIntolerances string              `json:"alergias_intolerancias"`
	FruitIntake           string              `json:"frutas_consumo"`
	VegetableIntake       string              `json:"legumes_consumo"`
	GreensIntake          string              `json:"hortalicas_consumo"`
	Supplements           string              `json:"suplementos"`
}

// paymentSummary is returned by GET /api/funnel/payment.
type paymentSummary struct {
	SelectedPlan  string `json:"selected_plan"`
	ClientName    string `json:"client_name"`
	ClientEmail   string `json:"client_email"`
	FinalCalories int    `json:"final_calories"`
}

// checkoutRequest is the body of POST /api/funnel/checkout. PlanType may be
// omitted to pay for the plan chosen earlier in the funnel.
type checkoutRequest struct {
	PlanType string `json:"planType"`
}

// lead is one row of the admin export.
type lead struct {
	SessionID     string    `json:"session_id"`
	SubmittedAt   time.Time `json:"submitted_at"`
	Plan          string    `json:"plan"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Whatsapp      string    `json:"whatsapp"`
	FinalCalories int       `json:"final_calories"`
	ProteinG      float64   `json:"protein_g"`
	FatG          float64   `json:"fat_g"`
	CarbsG        float64   `json:"carbs_g"`
}
