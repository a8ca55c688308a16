package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/store"
)

// ListMonths 列出已入库的报告月
// GET /api/months
func (h *Handler) ListMonths(c *gin.Context) {
	months, err := h.store.ListReportMonths()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if months == nil {
		months = []store.ReportMonthStat{}
	}
	c.JSON(http.StatusOK, gin.H{"months": months})
}

// ListFacts 按报告月查询规范化行
// GET /api/facts?month=2025-01-01
func (h *Handler) ListFacts(c *gin.Context) {
	rows, err := h.factRows(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"columns": model.TidyColumns,
		"rows":    rows,
	})
}

func (h *Handler) factRows(month string) ([]model.TidyRow, error) {
	facts, err := h.store.ListFacts(month)
	if err != nil {
		return nil, err
	}
	rows := make([]model.TidyRow, 0, len(facts))
	for _, f := range facts {
		rows = append(rows, f.TidyRow())
	}
	return rows, nil
}
