package handlers

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/database"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/middleware"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/services"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/utils"
)

// OrganizationHandler 组织管理处理器
type OrganizationHandler struct {
	db   database.DatabaseInterface
	orgs *services.OrgService
}

// NewOrganizationHandler 创建组织处理器
func NewOrganizationHandler(db database.DatabaseInterface, orgs *services.OrgService) *OrganizationHandler {
	return &OrganizationHandler{db: db, orgs: orgs}
}

// OrganizationSetupRequest 租户开通请求：组织 + 首个管理员账号
type OrganizationSetupRequest struct {
	CompanyName   string `json:"company_name"`
	Industry      string `json:"industry,omitempty"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
	AdminName     string `json:"admin_name"`
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify 由公司名生成URL友好的标识
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// Setup 开通新组织并创建首个管理员（trial订阅）
func (h *OrganizationHandler) Setup(w http.ResponseWriter, r *http.Request) {
	var req OrganizationSetupRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	req.AdminEmail = strings.TrimSpace(strings.ToLower(req.AdminEmail))
	if req.CompanyName == "" || req.AdminEmail == "" || req.AdminName == "" {
		utils.WriteBadRequestResponse(w, "company_name, admin_email and admin_name are required")
		return
	}
	if !strings.Contains(req.AdminEmail, "@") {
		utils.WriteValidationErrorResponse(w, "Invalid email address", "admin_email")
		return
	}
	if len(req.AdminPassword) < 6 {
		utils.WriteValidationErrorResponse(w, "Password must be at least 6 characters", "admin_password")
		return
	}

	// 邮箱全局唯一：已注册则拒绝开通
	existing, err := h.db.FindUserByEmail(req.AdminEmail)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to verify account email")
		return
	}
	if existing != nil {
		utils.WriteConflictResponse(w, "An account with this email already exists")
		return
	}

	now := time.Now()
	org := &models.Organization{
		ID:          uuid.New().String(),
		CompanyName: strings.TrimSpace(req.CompanyName),
		Slug:        slugify(req.CompanyName),
		Industry:    strings.TrimSpace(req.Industry),
		Subscription: models.OrgSubscription{
			Plan:   "trial",
			Status: models.SubscriptionTrial,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.db.CreateOrganization(org); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to create organization")
		return
	}

	passwordHash, err := utils.HashPassword(req.AdminPassword)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to create admin account")
		return
	}

	admin := &models.User{
		ID:              uuid.New().String(),
		OrganizationID:  org.ID,
		Email:           req.AdminEmail,
		Password:        passwordHash,
		FullName:        strings.TrimSpace(req.AdminName),
		Role:            models.RoleAdmin,
		IsActive:        true,
		IsEmailVerified: false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := h.db.CreateUser(admin); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to create admin account")
		return
	}

	utils.WriteCreatedResponse(w, map[string]interface{}{
		"organization": org,
		"admin":        admin,
	})
}

// Get 返回当前会话所属组织
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.ResolveOrgID(r)
	if orgID == "" {
		utils.WriteForbiddenResponse(w, "Organization context required")
		return
	}

	org, err := h.orgs.GetOrganization(orgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, org)
}

// UpdateProfile 更新组织基础信息（变更后立即失效品牌缓存）
func (h *OrganizationHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.ResolveOrgID(r)
	if orgID == "" {
		utils.WriteForbiddenResponse(w, "Organization context required")
		return
	}

	var req struct {
		CompanyName string          `json:"company_name,omitempty"`
		Logo        string          `json:"logo,omitempty"`
		Industry    string          `json:"industry,omitempty"`
		Address     *models.Address `json:"address,omitempty"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	org, err := h.orgs.GetOrganization(orgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if req.CompanyName != "" {
		org.CompanyName = strings.TrimSpace(req.CompanyName)
	}
	if req.Logo != "" {
		org.Logo = req.Logo
	}
	if req.Industry != "" {
		org.Industry = strings.TrimSpace(req.Industry)
	}
	if req.Address != nil {
		org.Address = *req.Address
	}
	org.UpdatedAt = time.Now()

	if err := h.orgs.UpdateOrganization(org); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to update organization")
		return
	}
	utils.WriteSuccessMessageResponse(w, "Organization updated", org)
}

// UpdateTheme 更新品牌主题
func (h *OrganizationHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.ResolveOrgID(r)
	if orgID == "" {
		utils.WriteForbiddenResponse(w, "Organization context required")
		return
	}

	var theme models.OrgTheme
	if err := utils.ParseJSONBody(r, &theme); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	org, err := h.orgs.GetOrganization(orgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	org.Theme = theme
	org.UpdatedAt = time.Now()

	if err := h.orgs.UpdateOrganization(org); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to update theme")
		return
	}
	utils.WriteSuccessMessageResponse(w, "Theme updated", org.Theme)
}

// AddDepartment 新增部门（同名拒绝）
func (h *OrganizationHandler) AddDepartment(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.ResolveOrgID(r)
	if orgID == "" {
		utils.WriteForbiddenResponse(w, "Organization context required")
		return
	}

	var dept models.Department
	if err := utils.ParseJSONBody(r, &dept); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(dept.Name) == "" {
		utils.WriteBadRequestResponse(w, "Department name is required")
		return
	}

	org, err := h.orgs.GetOrganization(orgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	for _, existing := range org.Departments {
		if strings.EqualFold(existing.Name, dept.Name) {
			utils.WriteConflictResponse(w, "Department already exists")
			return
		}
	}

	dept.Name = strings.TrimSpace(dept.Name)
	dept.CreatedAt = time.Now()
	org.Departments = append(org.Departments, dept)
	org.UpdatedAt = time.Now()

	if err := h.orgs.UpdateOrganization(org); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to add department")
		return
	}
	utils.WriteCreatedResponse(w, org.Departments)
}

// RemoveDepartment 删除部门
func (h *OrganizationHandler) RemoveDepartment(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.ResolveOrgID(r)
	if orgID == "" {
		utils.WriteForbiddenResponse(w, "Organization context required")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	org, err := h.orgs.GetOrganization(orgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	kept := org.Departments[:0]
	found := false
	for _, dept := range org.Departments {
		if strings.EqualFold(dept.Name, req.Name) {
			found = true
			continue
		}
		kept = append(kept, dept)
	}
	if !found {
		utils.WriteNotFoundResponse(w, "Department not found")
		return
	}

	org.Departments = kept
	org.UpdatedAt = time.Now()

	if err := h.orgs.UpdateOrganization(org); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to remove department")
		return
	}
	utils.WriteSuccessMessageResponse(w, "Department removed", org.Departments)
}
