package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	mediaUC "github.com/khoahotran/auto-featured-image/internal/application/usecase/media"
	"github.com/khoahotran/auto-featured-image/pkg/apperror"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

type MediaHandler struct {
	uploadMediaUC *mediaUC.UploadMediaUseCase
	listMediaUC   *mediaUC.ListMediaUseCase
	renameMediaUC *mediaUC.RenameMediaUseCase
	trashMediaUC  *mediaUC.TrashMediaUseCase
	logger        logger.Logger
}

func NewMediaHandler(
	uploadUC *mediaUC.UploadMediaUseCase,
	listUC *mediaUC.ListMediaUseCase,
	renameUC *mediaUC.RenameMediaUseCase,
	trashUC *mediaUC.TrashMediaUseCase,
	log logger.Logger,
) *MediaHandler {
	return &MediaHandler{
		uploadMediaUC: uploadUC,
		listMediaUC:   listUC,
		renameMediaUC: renameUC,
		trashMediaUC:  trashUC,
		logger:        log,
	}
}

func (h *MediaHandler) UploadMedia(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.NewInvalidInput("'file' is required", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.NewInternal("failed to open file", err))
		return
	}
	defer file.Close()

	title := c.PostForm("title")
	if title == "" {
		title = fileHeader.Filename
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		head := make([]byte, 512)
		n, _ := file.Read(head)
		mimeType = http.DetectContentType(head[:n])
		if _, err := file.Seek(0, 0); err != nil {
			c.Error(apperror.NewInternal("failed to rewind file", err))
			return
		}
	}

	output, err := h.uploadMediaUC.Execute(c.Request.Context(), mediaUC.UploadMediaInput{
		OwnerID:  ownerID,
		File:     file,
		Title:    title,
		MimeType: mimeType,
		Metadata: map[string]any{"original_filename": fileHeader.Filename},
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Upload attachment successfully, processing...",
		"attachment": ToAttachmentDTO(output.Attachment),
	})
}

func (h *MediaHandler) ListMedia(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	if page < 1 {
		page = 1
	}

	output, err := h.listMediaUC.Execute(c.Request.Context(), mediaUC.ListMediaInput{
		Prefix: c.Query("prefix"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		c.Error(err)
		return
	}

	dtos := make([]AttachmentDTO, len(output.Attachments))
	for i, a := range output.Attachments {
		dtos[i] = ToAttachmentDTO(a)
	}
	c.JSON(http.StatusOK, dtos)
}

func (h *MediaHandler) RenameMedia(c *gin.Context) {
	id, ok := parseID(c, "attachment")
	if !ok {
		return
	}

	var req RenameAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}

	a, err := h.renameMediaUC.Execute(c.Request.Context(), mediaUC.RenameMediaInput{AttachmentID: id, Title: req.Title})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToAttachmentDTO(a))
}

func (h *MediaHandler) TrashMedia(c *gin.Context) {
	id, ok := parseID(c, "attachment")
	if !ok {
		return
	}
	if err := h.trashMediaUC.Execute(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
