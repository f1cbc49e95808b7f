package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/dana-ai-api/internal/constants"
	"github.com/yukikurage/dana-ai-api/internal/dto"
	apierrors "github.com/yukikurage/dana-ai-api/internal/errors"
	"github.com/yukikurage/dana-ai-api/internal/middleware"
	"github.com/yukikurage/dana-ai-api/internal/models"
	"github.com/yukikurage/dana-ai-api/internal/services"
	"github.com/yukikurage/dana-ai-api/internal/tenancy"
)

type OrganizationHandler struct {
	orgService *services.OrganizationService
}

func NewOrganizationHandler(orgService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

// CreateOrganization creates a new organization owned by the caller
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateOrgRequest struct {
		Name     string          `json:"name" binding:"required"`
		Plan     models.PlanTier `json:"plan"`
		Logo     string          `json:"logo"`
		Website  string          `json:"website"`
		Industry string          `json:"industry"`
		Size     string          `json:"size"`
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, err := h.orgService.CreateOrganization(c.Request.Context(), services.CreateOrganizationInput{
		Name:     req.Name,
		Plan:     req.Plan,
		Logo:     req.Logo,
		Website:  req.Website,
		Industry: req.Industry,
		Size:     req.Size,
		OwnerID:  userID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrganizationDTO(*org))
}

// ListOrganizations returns all organizations the user is an accepted member of
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	memberships, err := h.orgService.ListOrganizationsForUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	orgs := make([]dto.OrganizationWithRoleDTO, len(memberships))
	for i, m := range memberships {
		orgs[i] = dto.ToOrganizationWithRoleDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"organizations": orgs,
	})
}

// GetOrganization returns the current organization with its members
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	org, members, err := h.orgService.GetOrganizationWithMembers(c.Request.Context(), rc.OrganizationID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDetailDTO(*org, members, rc.Role))
}

// UpdateOrganization updates the current organization's profile
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	type UpdateOrgRequest struct {
		Name     *string          `json:"name"`
		Plan     *models.PlanTier `json:"plan"`
		Logo     *string          `json:"logo"`
		Website  *string          `json:"website"`
		Industry *string          `json:"industry"`
		Size     *string          `json:"size"`
	}

	var req UpdateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, err := h.orgService.UpdateOrganization(c.Request.Context(), rc, services.UpdateOrganizationInput{
		Name:     req.Name,
		Plan:     req.Plan,
		Logo:     req.Logo,
		Website:  req.Website,
		Industry: req.Industry,
		Size:     req.Size,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org))
}

// InviteMember creates a pending membership for an existing user
func (h *OrganizationHandler) InviteMember(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	type InviteRequest struct {
		Username string       `json:"username" binding:"required"`
		Role     tenancy.Role `json:"role"`
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if req.Role == "" {
		req.Role = tenancy.RoleMember
	}

	member, err := h.orgService.InviteMember(c.Request.Context(), rc, services.InviteMemberInput{
		Username: req.Username,
		Role:     req.Role,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToInviteDTO(*member))
}

// AcceptInvite accepts a pending invite addressed to the caller
func (h *OrganizationHandler) AcceptInvite(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type AcceptRequest struct {
		Token string `json:"invite_token" binding:"required"`
	}

	var req AcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.orgService.AcceptInvite(c.Request.Context(), userID, req.Token)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Joined organization successfully",
		"organization_id": member.OrganizationID,
		"role":            member.Role,
	})
}

// RevokeMember revokes a member of the current organization
func (h *OrganizationHandler) RevokeMember(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	targetID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.orgService.RevokeMember(c.Request.Context(), rc, targetID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

// SelectOrganization stores the caller's current organization in the session
func (h *OrganizationHandler) SelectOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type SelectRequest struct {
		OrganizationID string `json:"organization_id" binding:"required"`
	}

	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.orgService.AcceptedMembership(c.Request.Context(), userID, req.OrganizationID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.SessionKeyCurrentOrganization, member.OrganizationID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organization_id": member.OrganizationID,
		"role":            member.Role,
	})
}
