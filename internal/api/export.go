package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/exporter"
)

// ExportRequest 导出请求
type ExportRequest struct {
	Month  string `json:"month"`  // 为空时导出全部
	Format string `json:"format"` // csv / xlsx，默认 xlsx
}

// Export 把事实表导出为 CSV/XLSX，返回一次性下载地址
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	var req ExportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数: " + err.Error()})
			return
		}
	}
	format := strings.ToLower(req.Format)
	if format == "" {
		format = "xlsx"
	}
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("不支持的导出格式: %s", req.Format)})
		return
	}

	rows, err := h.factRows(req.Month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	label := req.Month
	if label == "" {
		label = "all"
	}
	fileName := fmt.Sprintf("spins_tidy_%s.%s", label, format)

	if err := os.MkdirAll(h.exportDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建导出目录失败"})
		return
	}
	path := filepath.Join(h.exportDir, uuid.NewString()+"."+format)
	if format == "csv" {
		err = exporter.WriteCSVFile(path, rows)
	} else {
		err = exporter.WriteXLSX(path, rows)
	}
	if err != nil {
		_ = os.Remove(path)
		h.logger.Error("导出失败", "month", req.Month, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败: " + err.Error()})
		return
	}

	token := h.downloads.put(path, fileName, exportTTL)
	c.JSON(http.StatusOK, gin.H{
		"rows":        len(rows),
		"fileName":    fileName,
		"downloadUrl": "/api/export/download/" + token,
	})
}

// DownloadExport 通过一次性令牌下载导出文件
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	item, ok := h.downloads.take(c.Param("token"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接无效或已过期"})
		return
	}
	defer os.Remove(item.filePath)

	c.FileAttachment(item.filePath, item.fileName)
}
