package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"lg/diet-funnel-go-api/internal/funnel"
)

const leadsSheet = "Leads"

// listLeads decodes every saved user-data blob, newest first. Blobs that
// fail to decode are logged and skipped.
func (h *Handler) listLeads(c *gin.Context) ([]lead, error) {
	entries, err := h.carrier.Store().List(c, funnel.KeyUserData)
	if err != nil {
		return nil, err
	}

	leads := make([]lead, 0, len(entries))
	for _, e := range entries {
		var p funnelPayload
		if err := json.Unmarshal(e.Data, &p); err != nil {
			h.log.Warn("skipping malformed lead", zap.String("session", e.SessionID), zap.Error(err))
			continue
		}
		leads = append(leads, lead{
			SessionID:     e.SessionID,
			SubmittedAt:   p.SubmittedAt,
			Plan:          p.Plan,
			Name:          p.ClientName,
			Email:         p.ClientEmail,
			Whatsapp:      p.ClientWhatsapp,
			FinalCalories: p.FormData.FinalCalories,
			ProteinG:      p.FormData.ProteinGrams,
			FatG:          p.FormData.FatGrams,
			CarbsG:        p.FormData.CarbGrams,
		})
	}
	return leads, nil
}

// getLeads returns all submitted questionnaires as JSON.
// GET /api/admin/leads (basic auth).
func (h *Handler) getLeads(c *gin.Context) {
	leads, err := h.listLeads(c)
	if err != nil {
		h.log.Error("list leads", zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to list leads")
		return
	}
	c.JSON(http.StatusOK, leads)
}

// exportLeads streams all submitted questionnaires as an xlsx workbook.
// GET /api/admin/leads.xlsx (basic auth).
func (h *Handler) exportLeads(c *gin.Context) {
	leads, err := h.listLeads(c)
	if err != nil {
		h.log.Error("list leads", zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to list leads")
		return
	}

	f, err := newLeadsWorkbook(leads)
	if err != nil {
		h.log.Error("build leads workbook", zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to build export")
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("leads-%s.xlsx", h.now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.log.Error("write leads workbook", zap.Error(err))
	}
}

// newLeadsWorkbook lays leads out one per row under a bold header row.
func newLeadsWorkbook(leads []lead) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", leadsSheet); err != nil {
		return nil, err
	}

	headers := []string{"Sessão", "Enviado em", "Plano", "Nome", "E-mail", "WhatsApp", "Calorias", "Proteína (g)", "Gordura (g)", "Carboidratos (g)"}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(leadsSheet, cell, title)
	}
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(leadsSheet, "A1", last, style)

	for i, l := range leads {
		row := []any{
			l.SessionID, l.SubmittedAt.Format("2006-01-02 15:04"), l.Plan, l.Name, l.Email, l.Whatsapp,
			l.FinalCalories, roundGrams(l.ProteinG), roundGrams(l.FatG), roundGrams(l.CarbsG),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(leadsSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// roundGrams rounds to one decimal place for display.
func roundGrams(g float64) float64 {
	return float64(int(g*10+0.5)) / 10
}
