package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive-backend/internal/api/middleware"
	"github.com/taskhive/taskhive-backend/internal/models"
	"github.com/taskhive/taskhive-backend/internal/service"
)

// ============================================
// Comment Handler
// ============================================

type CommentHandler struct {
	commentService service.CommentService
	maxUploadBytes int64
}

// Create accepts multipart form data: an optional "content" field plus any
// number of "files" parts. Content may be blank only when a file comes along.
func (h *CommentHandler) Create(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expected multipart form data"})
		return
	}

	var content *string
	if values := form.Value["content"]; len(values) > 0 {
		content = &values[0]
	}

	var uploads []service.Upload
	for _, header := range form.File["files"] {
		if header.Size > h.maxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large", "file": header.Filename})
			return
		}
		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
			return
		}
		defer file.Close()
		uploads = append(uploads, service.Upload{
			Name:     header.Filename,
			Size:     header.Size,
			MimeType: header.Header.Get("Content-Type"),
			Reader:   file,
		})
	}

	if _, err := h.commentService.Create(c.Request.Context(), actor, c.Param("id"), content, uploads); err != nil {
		respondServiceError(c, err)
		return
	}

	// The reply is the whole thread, not just the new comment; clients
	// re-render the discussion from it.
	task, comments, err := h.commentService.Thread(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := models.TaskThreadResponse{
		Task:     toTaskResponse(task),
		Comments: make([]models.CommentResponse, len(comments)),
	}
	for i, cm := range comments {
		response.Comments[i] = toCommentResponse(cm)
	}

	c.JSON(http.StatusCreated, response)
}

func (h *CommentHandler) ListByTask(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	comments, err := h.commentService.ListByTask(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]models.CommentResponse, len(comments))
	for i, cm := range comments {
		response[i] = toCommentResponse(cm)
	}

	c.JSON(http.StatusOK, response)
}

func (h *CommentHandler) Update(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCommentResponse(comment))
}

func (h *CommentHandler) Delete(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	err := h.commentService.Delete(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		// The comment is gone even when file cleanup trailed behind; say so
		// instead of failing the request.
		if errors.Is(err, service.ErrStorage) {
			c.JSON(http.StatusOK, gin.H{"warning": "Comment deleted but some files could not be removed"})
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// ============================================
// Task attachments
// ============================================

func (h *CommentHandler) UploadTaskAttachment(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	if header.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large", "file": header.Filename})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	attachment, err := h.commentService.AttachToTask(c.Request.Context(), actor, c.Param("id"), service.Upload{
		Name:     header.Filename,
		Size:     header.Size,
		MimeType: header.Header.Get("Content-Type"),
		Reader:   file,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAttachmentResponse(attachment))
}

func (h *CommentHandler) ListTaskAttachments(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	attachments, err := h.commentService.ListTaskAttachments(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]models.AttachmentResponse, len(attachments))
	for i, a := range attachments {
		response[i] = toAttachmentResponse(a)
	}

	c.JSON(http.StatusOK, response)
}

func (h *CommentHandler) DeleteAttachment(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	err := h.commentService.DeleteAttachment(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrStorage) {
			c.JSON(http.StatusOK, gin.H{"warning": "Attachment deleted but the file could not be removed"})
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
