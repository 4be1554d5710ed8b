package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/config"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/middleware"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/services"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/utils"
)

// HiringHandler 招聘管道处理器
// HIRING_ENABLED 关闭时：写操作返回501，读操作返回空结果
type HiringHandler struct {
	config *config.Config
	hiring *services.HiringService
}

// NewHiringHandler 创建招聘处理器
func NewHiringHandler(cfg *config.Config, hiring *services.HiringService) *HiringHandler {
	return &HiringHandler{config: cfg, hiring: hiring}
}

// disabled 功能开关拦截（写操作）
func (h *HiringHandler) disabled(w http.ResponseWriter) bool {
	if h.config.HiringEnabled {
		return false
	}
	utils.WriteNotImplementedResponse(w, "Hiring module is disabled for this deployment")
	return true
}

// CreateCandidate 建档候选人
func (h *HiringHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	if h.disabled(w) {
		return
	}
	orgID := middleware.ResolveOrgID(r)
	if orgID == "" {
		utils.WriteForbiddenResponse(w, "Organization context required")
		return
	}

	var candidate models.Candidate
	if err := utils.ParseJSONBody(r, &candidate); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	created, err := h.hiring.CreateCandidate(orgID, &candidate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteCreatedResponse(w, created)
}

// GetCandidate 读取候选人
func (h *HiringHandler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	if h.disabled(w) {
		return
	}
	candidate, err := h.hiring.GetCandidate(chi.URLParam(r, "id"), middleware.ResolveOrgID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, candidate)
}

// CreateApplication 建立职位申请
func (h *HiringHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	if h.disabled(w) {
		return
	}
	user, _ := middleware.GetUserFromContext(r.Context())
	orgID := middleware.ResolveOrgID(r)

	var req struct {
		CandidateID    string `json:"candidate_id"`
		PositionTitle  string `json:"position_title"`
		Department     string `json:"department,omitempty"`
		EmploymentType string `json:"employment_type,omitempty"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	app, err := h.hiring.CreateApplication(orgID, req.CandidateID, req.PositionTitle, req.Department, req.EmploymentType, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteCreatedResponse(w, app)
}

// ListApplications 分页列表（模块关闭时固定空列表）
func (h *HiringHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	if !h.config.HiringEnabled {
		utils.WritePaginatedResponse(w, []models.Application{}, 1, 10, 0)
		return
	}

	q := parseListQuery(r, middleware.ResolveOrgID(r))
	q.Normalize()

	items, total, err := h.hiring.ListApplications(q)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list applications")
		return
	}
	utils.WritePaginatedResponse(w, items, q.Page, q.Limit, total)
}

// GetApplication 读取申请（含候选人）
func (h *HiringHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	if h.disabled(w) {
		return
	}
	app, err := h.hiring.GetApplication(chi.URLParam(r, "id"), middleware.ResolveOrgID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, app)
}

// MoveStage 阶段流转（offer阶段同步派生入职）
func (h *HiringHandler) MoveStage(w http.ResponseWriter, r *http.Request) {
	if h.disabled(w) {
		return
	}
	user, _ := middleware.GetUserFromContext(r.Context())

	var req models.StageMoveRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	app, err := h.hiring.MoveStage(chi.URLParam(r, "id"), middleware.ResolveOrgID(r), req, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessMessageResponse(w, "Application stage updated", app)
}

// AddNote 追加备注
func (h *HiringHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	if h.disabled(w) {
		return
	}
	user, _ := middleware.GetUserFromContext(r.Context())

	var req struct {
		Text string `json:"text"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	app, err := h.hiring.AddNote(chi.URLParam(r, "id"), middleware.ResolveOrgID(r), user.ID, req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessMessageResponse(w, "Note added", app)
}

// Stats 各阶段数量统计（模块关闭时固定空映射）
func (h *HiringHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if !h.config.HiringEnabled {
		utils.WriteSuccessResponse(w, map[string]int{})
		return
	}

	counts, err := h.hiring.Stats(middleware.ResolveOrgID(r))
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to load hiring stats")
		return
	}
	utils.WriteSuccessResponse(w, counts)
}

// DeleteApplication 删除申请
func (h *HiringHandler) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	if h.disabled(w) {
		return
	}
	if err := h.hiring.DeleteApplication(chi.URLParam(r, "id"), middleware.ResolveOrgID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessMessageResponse(w, "Application deleted", nil)
}
