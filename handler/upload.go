package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jakeh134/motionflow/config"
	"github.com/jakeh134/motionflow/middleware"
	"github.com/jakeh134/motionflow/service"
)

// UploadHandler drives the intake stepper: upload, progress, review loop.
type UploadHandler struct {
	intake *service.IntakeService
	config *config.IntakeConfig
}

func NewUploadHandler(intake *service.IntakeService, cfg *config.IntakeConfig) *UploadHandler {
	return &UploadHandler{intake: intake, config: cfg}
}

// Create accepts a multipart form with one or more "files" parts
func (h *UploadHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}

	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readUpload(fh, h.config.MaxFileSizeMB<<20)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		files = append(files, f)
	}

	snap, err := h.intake.Start(c.Request.Context(), middleware.GetSession(c), files)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, snap)
}

// readUpload reads one part, reading at most limit+1 bytes so oversized files
// are still reported by intake validation.
func readUpload(fh *multipart.FileHeader, limit int64) (service.UploadFile, error) {
	file, err := fh.Open()
	if err != nil {
		return service.UploadFile{}, fmt.Errorf("failed to read %s", fh.Filename)
	}
	defer file.Close()

	var r io.Reader = file
	if limit > 0 {
		r = io.LimitReader(file, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return service.UploadFile{}, fmt.Errorf("failed to read %s", fh.Filename)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	return service.UploadFile{Name: fh.Filename, ContentType: contentType, Data: data}, nil
}

func (h *UploadHandler) Get(c *gin.Context) {
	snap, err := h.intake.Get(middleware.GetSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Events streams progress as server-sent events until the pipeline stops
func (h *UploadHandler) Events(c *gin.Context) {
	updates, unsubscribe, err := h.intake.Subscribe(middleware.GetSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer unsubscribe()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case p, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("progress", p)
			return true
		}
	})
}

func (h *UploadHandler) Cancel(c *gin.Context) {
	snap, err := h.intake.Cancel(c.Request.Context(), middleware.GetSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *UploadHandler) Current(c *gin.Context) {
	doc, err := h.intake.Current(middleware.GetSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *UploadHandler) Next(c *gin.Context) {
	snap, err := h.intake.Next(middleware.GetSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *UploadHandler) Prev(c *gin.Context) {
	snap, err := h.intake.Prev(middleware.GetSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *UploadHandler) Document(c *gin.Context) {
	url, err := h.intake.DocumentURL(c.Request.Context(), middleware.GetSession(c), c.Param("id"), c.Param("docId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *UploadHandler) Finish(c *gin.Context) {
	snap, err := h.intake.Finish(c.Request.Context(), middleware.GetSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Act applies a review action to one document of the upload
func (h *UploadHandler) Act(c *gin.Context) {
	var req service.ActionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
	}

	doc, err := h.intake.Act(c.Request.Context(), middleware.GetSession(c), c.Param("id"), c.Param("docId"),
		service.DocumentAction(c.Param("action")), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
