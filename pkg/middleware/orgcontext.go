package middleware

import (
	"context"
	"net/http"

	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/services"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/utils"
)

// OrgContext 组织上下文中间件：解析会话用户的组织并做订阅状态拦截
// superadmin 绕过组织范围限制
// 订阅 expired → 402，cancelled → 403
func OrgContext(orgs *services.OrgService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUserFromContext(r.Context())
			if !ok {
				utils.WriteUnauthorizedResponse(w, "Authentication required")
				return
			}

			if user.Role == models.RoleSuperAdmin {
				next.ServeHTTP(w, r)
				return
			}

			if user.OrganizationID == "" {
				utils.WriteForbiddenResponse(w, "No organization associated with this account")
				return
			}

			// 订阅门禁在缓存TTL窗口内读缓存，不绕过
			org, err := orgs.GetCachedOrganization(user.OrganizationID)
			if err != nil {
				utils.WriteForbiddenResponse(w, "Organization could not be resolved")
				return
			}

			switch org.Subscription.Status {
			case models.SubscriptionExpired:
				utils.WritePaymentRequiredResponse(w, "Organization subscription has expired")
				return
			case models.SubscriptionCancelled:
				utils.WriteForbiddenResponse(w, "Organization subscription has been cancelled")
				return
			}

			ctx := context.WithValue(r.Context(), OrgContextKey, org)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ResolveOrgID 处理器取组织范围的辅助函数
// superadmin 无组织上下文时允许通过查询参数指定
func ResolveOrgID(r *http.Request) string {
	if org, ok := GetOrgFromContext(r.Context()); ok {
		return org.ID
	}
	if user, ok := GetUserFromContext(r.Context()); ok {
		if user.Role == models.RoleSuperAdmin {
			if q := r.URL.Query().Get("org_id"); q != "" {
				return q
			}
		}
		return user.OrganizationID
	}
	return ""
}
