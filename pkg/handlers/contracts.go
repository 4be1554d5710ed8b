package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/middleware"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/services"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/utils"
)

// ContractHandler 雇佣合同处理器
type ContractHandler struct {
	contracts *services.ContractService
}

// NewContractHandler 创建合同处理器
func NewContractHandler(contracts *services.ContractService) *ContractHandler {
	return &ContractHandler{contracts: contracts}
}

// Create 管理端从已审批表单创建合同
func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUserFromContext(r.Context())
	orgID := middleware.ResolveOrgID(r)
	if orgID == "" {
		utils.WriteForbiddenResponse(w, "Organization context required")
		return
	}

	var req models.ContractCreateRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	contract, token, err := h.contracts.Create(orgID, req, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteCreatedResponse(w, map[string]interface{}{
		"contract": contract,
		"token":    token,
	})
}

// Send 管理端发送合同签署链接
func (h *ContractHandler) Send(w http.ResponseWriter, r *http.Request) {
	contract, _, err := h.contracts.Send(chi.URLParam(r, "id"), middleware.ResolveOrgID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessMessageResponse(w, "Contract sent", contract)
}

// GetByToken 公开端点：候选人查看待签合同
func (h *ContractHandler) GetByToken(w http.ResponseWriter, r *http.Request) {
	view, err := h.contracts.GetByToken(chi.URLParam(r, "token"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, view)
}

// Sign 公开端点：候选人签署合同
func (h *ContractHandler) Sign(w http.ResponseWriter, r *http.Request) {
	var req models.SignatureRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	req.IPAddress = clientIP(r)

	contract, err := h.contracts.Sign(chi.URLParam(r, "token"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessMessageResponse(w, "Contract signed", contract)
}

// Complete 管理端归档已签合同
func (h *ContractHandler) Complete(w http.ResponseWriter, r *http.Request) {
	contract, err := h.contracts.Complete(chi.URLParam(r, "id"), middleware.ResolveOrgID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessMessageResponse(w, "Contract completed", contract)
}

// Terminate 管理端终止合同
func (h *ContractHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = utils.ParseJSONBody(r, &req)

	contract, err := h.contracts.Terminate(chi.URLParam(r, "id"), middleware.ResolveOrgID(r), req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessMessageResponse(w, "Contract terminated", contract)
}

// List 管理端分页列表
func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r, middleware.ResolveOrgID(r))
	q.Normalize()

	items, total, err := h.contracts.ListContracts(q)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list contracts")
		return
	}
	utils.WritePaginatedResponse(w, items, q.Page, q.Limit, total)
}

// Get 管理端按ID读取
func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	contract, err := h.contracts.GetContract(chi.URLParam(r, "id"), middleware.ResolveOrgID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, contract)
}

// clientIP 取真实客户端IP（代理头优先）
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
