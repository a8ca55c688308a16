package api

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/profile"
)

// SaveProfileRequest 保存人工确认的列映射
type SaveProfileRequest struct {
	FileName string            `json:"fileName" binding:"required"`
	Sheet    string            `json:"sheet" binding:"required"`
	Headers  []string          `json:"headers" binding:"required"`
	Mapping  map[string]string `json:"mapping" binding:"required"`
}

// ListProfiles 列出全部已保存映射
// GET /api/profiles
func (h *Handler) ListProfiles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"profiles": h.profiles.Load()})
}

// SaveProfile 保存映射（按 文件名+sheet+表头 指纹覆盖）
// POST /api/profiles
func (h *Handler) SaveProfile(c *gin.Context) {
	var req SaveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数: " + err.Error()})
		return
	}

	headers := profile.UsableHeaders(req.Headers)
	mapping, err := profile.BuildMapping(req.Mapping, headers)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := profile.NewKey(filepath.Base(req.FileName), req.Sheet, headers)
	if err := h.profiles.Put(key, mapping); err != nil {
		h.logger.Error("保存列映射失败", "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("已保存列映射", "file", req.FileName, "sheet", req.Sheet, "key", key)
	c.JSON(http.StatusOK, gin.H{"key": key, "mapping": mapping})
}
