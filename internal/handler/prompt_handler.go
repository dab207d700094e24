package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PromptHandler exposes the per-organization extraction prompt. Prompts are
// addressed by organization id: each organization has at most one.
type PromptHandler struct {
	promptService service.PromptService
	resolver      middleware.SessionResolver
}

func NewPromptHandler(promptService service.PromptService, resolver middleware.SessionResolver) *PromptHandler {
	return &PromptHandler{promptService: promptService, resolver: resolver}
}

func (h *PromptHandler) RegisterRoutes(router *gin.RouterGroup) {
	prompts := router.Group("/organization-prompts", middleware.RequireAuth(h.resolver))
	{
		prompts.POST("", h.Create)
		prompts.GET("", h.List)
		prompts.GET("/:organization_id", h.Get)
		prompts.PUT("/:organization_id", h.Update)
		prompts.DELETE("/:organization_id", h.Delete)
	}
}

// Create handles POST /organization-prompts
// @Summary      Create organization prompt
// @Description  Creates the extraction prompt for an organization; at most one per organization
// @Tags         prompts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.PromptRequest  true  "Prompt Payload"
// @Success      201      {object}  response.Response{data=model.OrganizationPrompt}
// @Failure      409      {object}  response.Response
// @Router       /organization-prompts [post]
func (h *PromptHandler) Create(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	var req service.PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	prompt, err := h.promptService.Create(c.Request.Context(), identity, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, prompt))
}

func (h *PromptHandler) List(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	params := pagination.Parse(c)

	prompts, total, err := h.promptService.List(c.Request.Context(), identity, params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"prompts": prompts,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}

func (h *PromptHandler) Get(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	orgID, err := uuid.Parse(c.Param("organization_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid organization ID"))
		return
	}

	prompt, err := h.promptService.GetForOrganization(c.Request.Context(), identity, orgID)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, prompt))
}

func (h *PromptHandler) Update(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	orgID, err := uuid.Parse(c.Param("organization_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid organization ID"))
		return
	}

	var req service.PromptUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	prompt, err := h.promptService.Update(c.Request.Context(), identity, orgID, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, prompt))
}

func (h *PromptHandler) Delete(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	orgID, err := uuid.Parse(c.Param("organization_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid organization ID"))
		return
	}

	if err := h.promptService.Delete(c.Request.Context(), identity, orgID); err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Prompt deleted successfully"))
}
