package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/intern-management-api/internal/dto"
	apierrors "github.com/yukikurage/intern-management-api/internal/errors"
	"github.com/yukikurage/intern-management-api/internal/models"
	"github.com/yukikurage/intern-management-api/internal/services"
)

// ResourceHandler serves shared documents, notes and meeting links.
type ResourceHandler struct {
	resources *services.ResourceService
}

func NewResourceHandler(resources *services.ResourceService) *ResourceHandler {
	return &ResourceHandler{resources: resources}
}

// ListResources returns the resources of the caller's team
// Can filter by team_id and type
func (h *ResourceHandler) ListResources(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var input services.ListResourcesInput
	if input.TeamID, ok = parseOptionalUint(c, "team_id"); !ok {
		return
	}
	if raw := c.Query("type"); raw != "" {
		typ := models.ResourceType(raw)
		if !typ.Valid() {
			apierrors.BadRequest(c, "Invalid type")
			return
		}
		input.Type = &typ
	}

	resources, err := h.resources.ListResources(actor, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resources": dto.ToResourceDTOs(resources),
	})
}

// ListMeetings returns the meeting links of the caller's team
func (h *ResourceHandler) ListMeetings(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	meetings, err := h.resources.ListMeetings(actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"meetings": dto.ToResourceDTOs(meetings),
	})
}

// CreateResource shares a resource with a team
func (h *ResourceHandler) CreateResource(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	resource, err := h.resources.CreateResource(c.Request.Context(), actor, services.CreateResourceInput{
		Title:       req.Title,
		Type:        req.Type,
		Link:        req.Link,
		FileURL:     req.FileURL,
		Description: req.Description,
		TeamID:      req.TeamID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToResourceDTO(*resource))
}

// GetResource returns a single resource
func (h *ResourceHandler) GetResource(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resource, err := h.resources.GetResource(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToResourceDTO(*resource))
}
