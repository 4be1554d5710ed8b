package handlers

import (
	"net/http"

	"github.com/techxudo-devs/techxudo-oms-server/pkg/database"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/middleware"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/services"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/utils"
)

// DevHandler 开发辅助路由（生产环境不挂载）
type DevHandler struct {
	onboarding *services.OnboardingService
}

// NewDevHandler 创建开发工具处理器
func NewDevHandler(onboarding *services.OnboardingService) *DevHandler {
	return &DevHandler{onboarding: onboarding}
}

// PurgeOnboardings 按邮箱清理入职记录，方便重复测试邀请流程
func (h *DevHandler) PurgeOnboardings(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.ResolveOrgID(r)
	if orgID == "" {
		utils.WriteForbiddenResponse(w, "Organization context required")
		return
	}

	email := r.URL.Query().Get("email")
	if email == "" {
		utils.WriteBadRequestResponse(w, "email query parameter is required")
		return
	}

	deleted, err := h.onboarding.PurgeByEmail(orgID, email)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to purge onboardings")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"deleted": deleted,
	})
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	db database.DatabaseInterface
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(db database.DatabaseInterface) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health 服务与数据库健康状态
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":   "ok",
		"database": "ok",
	}

	if err := h.db.HealthCheck(); err != nil {
		status["status"] = "degraded"
		status["database"] = err.Error()
		utils.WriteJSONResponse(w, http.StatusServiceUnavailable, status)
		return
	}

	if pg, ok := h.db.(*database.PostgresDatabase); ok {
		stats := pg.Stats()
		status["pool"] = map[string]interface{}{
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
		}
	}

	utils.WriteSuccessResponse(w, status)
}
