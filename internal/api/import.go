package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/importer"
)

// Import 导入上传的工作簿并写入数据库，一次性返回结果
// POST /api/import
func (h *Handler) Import(c *gin.Context) {
	files, ok := formFiles(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	paths, cleanup, err := h.saveUploads(c, files)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer cleanup()

	report := h.newCoordinator().ImportToStore(h.store, paths)
	c.JSON(http.StatusOK, report)
}

// ImportStream 导入上传的工作簿 (SSE 流式响应)
// POST /api/import/stream
func (h *Handler) ImportStream(c *gin.Context) {
	files, ok := formFiles(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	paths, cleanup, err := h.saveUploads(c, files)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer cleanup()

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	send := func(event importer.ProgressEvent) {
		b, err := json.Marshal(event)
		if err != nil {
			return
		}
		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	coordinator := h.newCoordinator()
	coordinator.OnProgress(send)
	report := coordinator.ImportToStore(h.store, paths)

	send(importer.ProgressEvent{
		Type:      "report",
		Message:   "导入完成",
		Data:      report,
		Timestamp: time.Now(),
	})
}
