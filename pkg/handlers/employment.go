package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/middleware"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/services"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/utils"
)

// EmploymentFormHandler 雇佣信息表处理器
type EmploymentFormHandler struct {
	forms *services.EmploymentFormService
}

// NewEmploymentFormHandler 创建表单处理器
func NewEmploymentFormHandler(forms *services.EmploymentFormService) *EmploymentFormHandler {
	return &EmploymentFormHandler{forms: forms}
}

// Create 管理端直接创建表单（不经过accept链）
func (h *EmploymentFormHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.ResolveOrgID(r)
	if orgID == "" {
		utils.WriteForbiddenResponse(w, "Organization context required")
		return
	}

	var req struct {
		Email               string `json:"email"`
		AppointmentLetterID string `json:"appointment_letter_id,omitempty"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	form, token, err := h.forms.Create(orgID, req.Email, req.AppointmentLetterID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteCreatedResponse(w, map[string]interface{}{
		"form":  form,
		"token": token,
	})
}

// GetByToken 公开端点：候选人读取表单
func (h *EmploymentFormHandler) GetByToken(w http.ResponseWriter, r *http.Request) {
	details, err := h.forms.GetByToken(chi.URLParam(r, "token"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, details)
}

// Submit 公开端点：候选人提交表单
func (h *EmploymentFormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		utils.WriteBadRequestResponse(w, "Token is required")
		return
	}

	var submission models.EmploymentFormSubmission
	if err := utils.ParseJSONBody(r, &submission); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	form, err := h.forms.Submit(token, submission)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessMessageResponse(w, "Employment form submitted", form)
}

// List 管理端分页列表
func (h *EmploymentFormHandler) List(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r, middleware.ResolveOrgID(r))
	q.Normalize()

	items, total, err := h.forms.ListForms(q)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list employment forms")
		return
	}
	utils.WritePaginatedResponse(w, items, q.Page, q.Limit, total)
}

// Get 管理端按ID读取
func (h *EmploymentFormHandler) Get(w http.ResponseWriter, r *http.Request) {
	form, err := h.forms.GetForm(chi.URLParam(r, "id"), middleware.ResolveOrgID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, form)
}

// Review 管理端审核（approved/rejected）
func (h *EmploymentFormHandler) Review(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUserFromContext(r.Context())

	var req models.ReviewRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	form, err := h.forms.Review(chi.URLParam(r, "id"), middleware.ResolveOrgID(r), req, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessMessageResponse(w, "Employment form reviewed", form)
}

// RequestRevision 管理端要求修改
func (h *EmploymentFormHandler) RequestRevision(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUserFromContext(r.Context())

	var req models.RevisionRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	form, err := h.forms.RequestRevision(chi.URLParam(r, "id"), middleware.ResolveOrgID(r), req, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessMessageResponse(w, "Revision requested", form)
}
