package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Trident-Energy/TridentEnergy-ContractGuard/middleware"
	"github.com/Trident-Energy/TridentEnergy-ContractGuard/model"
	"github.com/Trident-Energy/TridentEnergy-ContractGuard/service"
	"github.com/gin-gonic/gin"
)

type ContractHandler struct {
	store    service.ContractRepository
	workflow *service.WorkflowService
}

func NewContractHandler(store service.ContractRepository, workflow *service.WorkflowService) *ContractHandler {
	return &ContractHandler{store: store, workflow: workflow}
}

// respondServiceError maps service sentinel errors onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func parseListParams(c *gin.Context) service.ListParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(service.DefaultPageSize)))

	return service.ListParams{
		Entity:       c.DefaultQuery("entity", "all"),
		Status:       c.DefaultQuery("status", "all"),
		HighRiskOnly: c.Query("high_risk") == "true",
		Search:       c.Query("search"),
		SortDesc:     c.DefaultQuery("sort", "desc") == "desc",
		Page:         page,
		PageSize:     pageSize,
	}
}

// List returns one page of the contract register. If the client echoes
// its previous filter set in prev_* query params, the page-reset rule is
// applied server-side.
func (h *ContractHandler) List(c *gin.Context) {
	params := parseListParams(c)

	if _, hasPrev := c.GetQuery("prev_entity"); hasPrev {
		prevPage, _ := strconv.Atoi(c.DefaultQuery("prev_page", "1"))
		prevSize, _ := strconv.Atoi(c.DefaultQuery("prev_page_size", strconv.Itoa(service.DefaultPageSize)))
		prev := service.ListParams{
			Entity:       c.Query("prev_entity"),
			Status:       c.DefaultQuery("prev_status", "all"),
			HighRiskOnly: c.Query("prev_high_risk") == "true",
			Search:       c.Query("prev_search"),
			Page:         prevPage,
			PageSize:     prevSize,
		}
		params.Page = service.ResolvePage(prev, params)
	}

	result := service.ApplyListParams(h.store.GetAll(), params)
	c.JSON(http.StatusOK, result)
}

// Metrics returns the dashboard aggregates, optionally scoped to one entity.
func (h *ContractHandler) Metrics(c *gin.Context) {
	entity := c.DefaultQuery("entity", "all")
	metrics := service.ComputeMetrics(h.store.GetAll(), entity)
	c.JSON(http.StatusOK, metrics)
}

// Get returns a single contract with the actions the caller may take on it.
func (h *ContractHandler) Get(c *gin.Context) {
	contract, err := h.store.GetByID(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	actions := service.AllowedActions(middleware.GetRole(c), contract.Status)
	allowed := make([]string, 0, len(actions))
	for action, ok := range actions {
		if ok {
			allowed = append(allowed, action)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"contract":        contract,
		"allowed_actions": allowed,
	})
}

// Create adds a new draft contract owned by the caller.
func (h *ContractHandler) Create(c *gin.Context) {
	var contract model.Contract
	if err := c.ShouldBindJSON(&contract); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	created, err := h.workflow.CreateDraft(middleware.GetUserID(c), &contract)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Update applies edits to a draft or changes-requested contract.
func (h *ContractHandler) Update(c *gin.Context) {
	var contract model.Contract
	if err := c.ShouldBindJSON(&contract); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	contract.ID = c.Param("id")

	updated, err := h.workflow.UpdateDraft(middleware.GetUserID(c), &contract)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Submit routes a draft into review.
func (h *ContractHandler) Submit(c *gin.Context) {
	contract, err := h.workflow.Submit(c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

type DecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
	Comment  string `json:"comment"`
}

// Decide records an approval decision from the caller's role.
func (h *ContractHandler) Decide(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	contract, err := h.workflow.Decide(c.Param("id"), middleware.GetUserID(c), req.Decision, req.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddComment appends a remark to the contract.
func (h *ContractHandler) AddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	contract, err := h.workflow.AddComment(c.Param("id"), middleware.GetUserID(c), req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

// MarkCommentsRead clears the unread-comments flag.
func (h *ContractHandler) MarkCommentsRead(c *gin.Context) {
	if err := h.workflow.MarkCommentsRead(c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comments marked as read"})
}

type ReviewerRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// AddReviewer attaches an ad-hoc reviewer to the contract.
func (h *ContractHandler) AddReviewer(c *gin.Context) {
	var req ReviewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	contract, err := h.workflow.AddAdHocReviewer(c.Param("id"), middleware.GetUserID(c), req.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}
