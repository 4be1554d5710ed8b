package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/database"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/middleware"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/utils"
)

// AttendanceHandler 考勤打卡处理器（直连数据库，无业务服务层）
type AttendanceHandler struct {
	db database.DatabaseInterface
}

// NewAttendanceHandler 创建考勤处理器
func NewAttendanceHandler(db database.DatabaseInterface) *AttendanceHandler {
	return &AttendanceHandler{db: db}
}

// CheckIn 上班打卡：当天已有未签退记录则冲突
func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	orgID := middleware.ResolveOrgID(r)
	if orgID == "" {
		utils.WriteForbiddenResponse(w, "Organization context required")
		return
	}

	var req struct {
		Notes string `json:"notes,omitempty"`
	}
	_ = utils.ParseJSONBody(r, &req)

	now := time.Now()
	date := now.Format("2006-01-02")

	open, err := h.db.GetOpenAttendanceRecord(orgID, user.ID, date)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to check attendance state")
		return
	}
	if open != nil {
		utils.WriteConflictResponse(w, "Already checked in today")
		return
	}

	rec := &models.AttendanceRecord{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		UserID:         user.ID,
		Date:           date,
		CheckInAt:      now,
		Notes:          req.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.db.CreateAttendanceRecord(rec); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to record check-in")
		return
	}
	utils.WriteCreatedResponse(w, rec)
}

// CheckOut 下班打卡：关闭当天的未签退记录
func (h *AttendanceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	orgID := middleware.ResolveOrgID(r)
	if orgID == "" {
		utils.WriteForbiddenResponse(w, "Organization context required")
		return
	}

	now := time.Now()
	date := now.Format("2006-01-02")

	open, err := h.db.GetOpenAttendanceRecord(orgID, user.ID, date)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to check attendance state")
		return
	}
	if open == nil {
		utils.WriteNotFoundResponse(w, "No open check-in found for today")
		return
	}

	open.CheckOutAt = &now
	open.UpdatedAt = now
	if err := h.db.UpdateAttendanceRecord(open); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to record check-out")
		return
	}
	utils.WriteSuccessMessageResponse(w, "Checked out", open)
}

// List 考勤记录列表：员工只能看自己的，管理员可按user_id过滤
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	q := parseListQuery(r, middleware.ResolveOrgID(r))
	if user.Role == models.RoleEmployee {
		q.UserID = user.ID
	}
	q.Normalize()

	items, total, err := h.db.ListAttendanceRecords(q)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list attendance records")
		return
	}
	utils.WritePaginatedResponse(w, items, q.Page, q.Limit, total)
}
