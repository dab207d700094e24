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

type OrganizationHandler struct {
	orgService service.OrganizationService
	resolver   middleware.SessionResolver
}

func NewOrganizationHandler(orgService service.OrganizationService, resolver middleware.SessionResolver) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService, resolver: resolver}
}

func (h *OrganizationHandler) RegisterRoutes(router *gin.RouterGroup) {
	orgs := router.Group("/organizations", middleware.RequireAuth(h.resolver), middleware.RequireAdmin())
	{
		orgs.POST("", h.Create)
		orgs.GET("", h.List)
		orgs.GET("/:id", h.Get)
		orgs.PUT("/:id", h.Update)
		orgs.DELETE("/:id", h.Delete)
	}
}

// Create handles POST /organizations
// @Summary      Create organization
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.OrganizationRequest  true  "Organization Payload"
// @Success      201      {object}  response.Response{data=model.Organization}
// @Failure      409      {object}  response.Response
// @Router       /organizations [post]
func (h *OrganizationHandler) Create(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	var req service.OrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	org, err := h.orgService.Create(c.Request.Context(), identity, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, org))
}

// List handles GET /organizations
// @Summary      List organizations
// @Tags         organizations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=object}
// @Router       /organizations [get]
func (h *OrganizationHandler) List(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	params := pagination.Parse(c)

	orgs, total, err := h.orgService.List(c.Request.Context(), identity, params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"organizations": orgs,
		"total":         total,
		"page":          params.Page,
		"limit":         params.Limit,
	}))
}

func (h *OrganizationHandler) Get(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid organization ID"))
		return
	}

	org, err := h.orgService.Get(c.Request.Context(), identity, id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, org))
}

func (h *OrganizationHandler) Update(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid organization ID"))
		return
	}

	var req service.OrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	org, err := h.orgService.Update(c.Request.Context(), identity, id, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, org))
}

func (h *OrganizationHandler) Delete(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid organization ID"))
		return
	}

	if err := h.orgService.Delete(c.Request.Context(), identity, id); err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Organization deleted successfully"))
}
