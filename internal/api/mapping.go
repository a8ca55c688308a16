package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/excel"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/importer"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/parser"
)

// SheetsResponse 工作簿 sheet 列表
type SheetsResponse struct {
	FileName   string            `json:"fileName"`
	Sheets     []model.SheetInfo `json:"sheets"`
	Candidates []string          `json:"candidates"`
}

// ListSheets 列出上传工作簿的 sheet 及候选顺序
// POST /api/sheets
func (h *Handler) ListSheets(c *gin.Context) {
	files, ok := formFiles(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	paths, cleanup, err := h.saveUploads(c, files[:1])
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer cleanup()

	wb, err := excel.Open(paths[0])
	if err != nil {
		c.JSON(statusForIngestError(err), gin.H{"error": err.Error()})
		return
	}
	defer wb.Close()

	recognizer := parser.NewSheetRecognizer(h.ingest.PreferredSheets)
	c.JSON(http.StatusOK, SheetsResponse{
		FileName:   filepath.Base(paths[0]),
		Sheets:     excel.Sheets(wb),
		Candidates: recognizer.CandidateSheets(wb.SheetNames()),
	})
}

// SuggestMapping 返回六个字段的建议映射、已保存映射与数据预览
// POST /api/mapping/suggest
//
// 表单字段：file、sheet（可选）、headerStart/headerEnd/dataStart（可选，0 起始行号）
func (h *Handler) SuggestMapping(c *gin.Context) {
	files, ok := formFiles(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	req := importer.SuggestRequest{Sheet: c.PostForm("sheet")}
	if start, end := c.PostForm("headerStart"), c.PostForm("headerEnd"); start != "" || end != "" {
		s, errS := strconv.Atoi(start)
		e, errE := strconv.Atoi(end)
		if errS != nil || errE != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "headerStart/headerEnd 必须同时提供整数"})
			return
		}
		req.Block = &model.HeaderBlock{Start: s, End: e}
	}
	if v := c.PostForm("dataStart"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dataStart 必须是整数"})
			return
		}
		req.DataStart = n
	}

	paths, cleanup, err := h.saveUploads(c, files[:1])
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer cleanup()
	req.Path = paths[0]

	res, err := h.newCoordinator().Suggest(req)
	if err != nil {
		c.JSON(statusForIngestError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// statusForIngestError 导入/建议错误 → HTTP 状态码
func statusForIngestError(err error) int {
	switch {
	case errors.Is(err, excel.ErrSheetNotFound):
		return http.StatusNotFound
	case errors.Is(err, parser.ErrHeaderNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, importer.ErrInvalidHeaderRows), errors.Is(err, excel.ErrFileUnreadable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
