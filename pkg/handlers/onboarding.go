package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/config"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/database"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/middleware"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/services"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/utils"
)

// OnboardingHandler 入职生命周期处理器
type OnboardingHandler struct {
	config     *config.Config
	onboarding *services.OnboardingService
	orgs       *services.OrgService
	notify     *services.NotificationService
}

// NewOnboardingHandler 创建入职处理器
func NewOnboardingHandler(cfg *config.Config, onboarding *services.OnboardingService, orgs *services.OrgService, notify *services.NotificationService) *OnboardingHandler {
	return &OnboardingHandler{config: cfg, onboarding: onboarding, orgs: orgs, notify: notify}
}

// parseListQuery 读取分页与过滤参数
func parseListQuery(r *http.Request, orgID string) database.ListQuery {
	page, _ := strconv.Atoi(utils.GetQueryParam(r, "page", "1"))
	limit, _ := strconv.Atoi(utils.GetQueryParam(r, "limit", "10"))
	return database.ListQuery{
		OrganizationID: orgID,
		Status:         r.URL.Query().Get("status"),
		Email:          r.URL.Query().Get("email"),
		UserID:         r.URL.Query().Get("user_id"),
		Page:           page,
		Limit:          limit,
	}
}

// CreateEmployee 管理员发起入职（占位账号 + pending记录 + offer邮件）
func (h *OnboardingHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUserFromContext(r.Context())
	orgID := middleware.ResolveOrgID(r)
	if orgID == "" {
		utils.WriteForbiddenResponse(w, "Organization context required")
		return
	}

	var req models.CreateEmployeeRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	result, err := h.onboarding.CreateEmployee(orgID, req, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// offer邮件尽力发送；token只进邮件链接和本次响应
	if org, orgErr := h.orgs.GetCachedOrganization(orgID); orgErr == nil {
		h.notify.SendOnboardingInvite(org, result.Onboarding, result.Token)
	}

	utils.WriteCreatedResponse(w, result)
}

// GetByToken 公开端点：token持有者查看offer详情
func (h *OnboardingHandler) GetByToken(w http.ResponseWriter, r *http.Request) {
	details, err := h.onboarding.GetDetails(chi.URLParam(r, "token"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, details)
}

// Accept 公开端点：接受offer，同步返回表单token
func (h *OnboardingHandler) Accept(w http.ResponseWriter, r *http.Request) {
	result, err := h.onboarding.AcceptOffer(chi.URLParam(r, "token"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, result)
}

// Reject 公开端点：拒绝offer
func (h *OnboardingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = utils.ParseJSONBody(r, &req)

	ob, err := h.onboarding.RejectOffer(chi.URLParam(r, "token"), req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessMessageResponse(w, "Offer declined", ob)
}

// Complete 公开端点：完成入职并激活账号
func (h *OnboardingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileCompletion
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	ob, err := h.onboarding.CompleteOnboarding(chi.URLParam(r, "token"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessMessageResponse(w, "Onboarding completed", ob)
}

// EnsureForm 公开端点：幂等找回/重建表单token
func (h *OnboardingHandler) EnsureForm(w http.ResponseWriter, r *http.Request) {
	result, err := h.onboarding.EnsureEmploymentForm(chi.URLParam(r, "token"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, result)
}

// List 管理端分页列表
func (h *OnboardingHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.ResolveOrgID(r)
	q := parseListQuery(r, orgID)
	q.Normalize()

	items, total, err := h.onboarding.ListOnboardings(q)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list onboardings")
		return
	}
	utils.WritePaginatedResponse(w, items, q.Page, q.Limit, total)
}

// Get 管理端按ID读取
func (h *OnboardingHandler) Get(w http.ResponseWriter, r *http.Request) {
	ob, err := h.onboarding.GetOnboarding(chi.URLParam(r, "id"), middleware.ResolveOrgID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, ob)
}

// Stats 状态统计
func (h *OnboardingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.onboarding.CountByStatus(middleware.ResolveOrgID(r))
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to load onboarding stats")
		return
	}
	utils.WriteSuccessResponse(w, counts)
}

// Revoke 管理端撤回offer
func (h *OnboardingHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUserFromContext(r.Context())

	var req struct {
		Reason string `json:"reason"`
	}
	_ = utils.ParseJSONBody(r, &req)

	ob, err := h.onboarding.RevokeOnboarding(chi.URLParam(r, "id"), middleware.ResolveOrgID(r), req.Reason, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessMessageResponse(w, "Onboarding revoked", ob)
}

// Resend 管理端重发offer（轮换token并重发邮件）
func (h *OnboardingHandler) Resend(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.ResolveOrgID(r)
	result, err := h.onboarding.ResendOfferLetter(chi.URLParam(r, "id"), orgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if org, orgErr := h.orgs.GetCachedOrganization(orgID); orgErr == nil {
		h.notify.SendOnboardingInvite(org, result.Onboarding, result.Token)
	}
	utils.WriteSuccessMessageResponse(w, "Offer letter resent", result)
}
