package handler

import (
	"net/http"

	"github.com/Trident-Energy/TridentEnergy-ContractGuard/pkg/logger"
	"github.com/Trident-Energy/TridentEnergy-ContractGuard/service"
	"github.com/gin-gonic/gin"
)

type AIHandler struct {
	store     service.ContractRepository
	assistant service.Assistant
	workflow  *service.WorkflowService
}

func NewAIHandler(store service.ContractRepository, assistant service.Assistant, workflow *service.WorkflowService) *AIHandler {
	return &AIHandler{store: store, assistant: assistant, workflow: workflow}
}

// Analyze generates (or returns the cached) AI risk summary for a
// contract. The text is advisory; a failed generation degrades to a
// fallback and never errors.
func (h *AIHandler) Analyze(c *gin.Context) {
	contract, err := h.store.GetByID(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if contract.AIAnalysis != "" && c.Query("refresh") != "true" {
		c.JSON(http.StatusOK, gin.H{"id": contract.ID, "analysis": contract.AIAnalysis, "cached": true})
		return
	}

	summary := h.assistant.SummarizeRisk(c.Request.Context(), contract)

	// The contract may have changed while the call was in flight; only
	// cache if it still exists and is the one we summarized.
	if current, err := h.store.GetByID(contract.ID); err == nil && current.UpdatedAt.Equal(contract.UpdatedAt) {
		if err := h.workflow.CacheAnalysis(contract.ID, summary); err != nil {
			logger.Warn(c.Request.Context(), "failed to cache analysis", "contract_id", contract.ID, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"id": contract.ID, "analysis": summary, "cached": false})
}

type RefineRequest struct {
	Text    string `json:"text" binding:"required"`
	Context string `json:"context"`
}

// Refine rewrites a free-text fragment for a contract form field. On any
// assistant failure the original text comes back unchanged.
func (h *AIHandler) Refine(c *gin.Context) {
	var req RefineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	refined := h.assistant.Refine(c.Request.Context(), req.Text, req.Context)
	c.JSON(http.StatusOK, gin.H{"text": refined})
}
