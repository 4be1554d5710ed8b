package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/middleware"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/services"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/utils"
)

// AppointmentHandler 委任函处理器
type AppointmentHandler struct {
	appointments *services.AppointmentService
}

// NewAppointmentHandler 创建委任函处理器
func NewAppointmentHandler(appointments *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

// Send 管理端创建并发送委任函
func (h *AppointmentHandler) Send(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUserFromContext(r.Context())
	orgID := middleware.ResolveOrgID(r)
	if orgID == "" {
		utils.WriteForbiddenResponse(w, "Organization context required")
		return
	}

	var req models.AppointmentSendRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	letter, token, err := h.appointments.Send(orgID, req, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteCreatedResponse(w, map[string]interface{}{
		"letter": letter,
		"token":  token,
	})
}

// View 公开端点：查看委任函（sent → viewed，幂等）
func (h *AppointmentHandler) View(w http.ResponseWriter, r *http.Request) {
	view, err := h.appointments.MarkAsViewed(chi.URLParam(r, "token"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, view)
}

// Respond 公开端点：接受/拒绝委任函
func (h *AppointmentHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req models.AppointmentResponseRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	letter, err := h.appointments.Respond(chi.URLParam(r, "token"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessMessageResponse(w, "Response recorded", letter)
}

// List 管理端分页列表
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r, middleware.ResolveOrgID(r))
	q.Normalize()

	items, total, err := h.appointments.ListLetters(q)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list appointment letters")
		return
	}
	utils.WritePaginatedResponse(w, items, q.Page, q.Limit, total)
}

// Get 管理端按ID读取
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	letter, err := h.appointments.GetLetter(chi.URLParam(r, "id"), middleware.ResolveOrgID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, letter)
}
