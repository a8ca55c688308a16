package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized       bool   `json:"initialized"`       // 是否已有数据
	LatestReportMonth string `json:"latestReportMonth"` // 最近报告月
	ReportMonths      int    `json:"reportMonths"`      // 报告月数量
	Profiles          int    `json:"profiles"`          // 已确认的列映射数量
	Brand             string `json:"brand"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		Brand:    h.ingest.Brand,
		Profiles: len(h.profiles.Load()),
	}

	months, err := h.store.ListReportMonths()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp.ReportMonths = len(months)
	resp.Initialized = len(months) > 0

	if latest, err := h.store.LatestReportMonth(); err == nil {
		resp.LatestReportMonth = latest
	}

	c.JSON(http.StatusOK, resp)
}
