package handler

import (
	"net/http"
	"time"

	"github.com/Trident-Energy/TridentEnergy-ContractGuard/middleware"
	"github.com/Trident-Energy/TridentEnergy-ContractGuard/model"
	"github.com/Trident-Energy/TridentEnergy-ContractGuard/service"
	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	store    service.ContractRepository
	storage  *service.AttachmentStorage
	workflow *service.WorkflowService
}

func NewAttachmentHandler(store service.ContractRepository, storage *service.AttachmentStorage, workflow *service.WorkflowService) *AttachmentHandler {
	return &AttachmentHandler{store: store, storage: storage, workflow: workflow}
}

// Upload stores an attachment blob in object storage and records its
// metadata on the contract.
func (h *AttachmentHandler) Upload(c *gin.Context) {
	contract, err := h.store.GetByID(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := h.storage.ObjectName(contract.Entity, contract.ID, header.Filename)
	if err := h.storage.Upload(c.Request.Context(), objectName, file, header.Size, contentType); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to store attachment: " + err.Error()})
		return
	}

	doc := model.Document{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		UploadedAt:  time.Now(),
	}
	updated, err := h.workflow.AttachDocument(contract.ID, middleware.GetUserID(c), doc)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Download redirects to a presigned URL for the attachment blob.
func (h *AttachmentHandler) Download(c *gin.Context) {
	contract, err := h.store.GetByID(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	name := c.Param("name")
	found := false
	for _, doc := range contract.Attachments {
		if doc.Name == name {
			found = true
			break
		}
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
		return
	}

	objectName := h.storage.ObjectName(contract.Entity, contract.ID, name)
	url, err := h.storage.PresignedURL(c.Request.Context(), objectName)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate download URL: " + err.Error()})
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, url)
}
