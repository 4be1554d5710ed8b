package handlers

import (
	"net/http"
	"strings"

	"github.com/techxudo-devs/techxudo-oms-server/pkg/config"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/database"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/middleware"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/utils"
)

// AuthHandler 会话认证处理器
type AuthHandler struct {
	config     *config.Config
	db         database.DatabaseInterface
	jwtService *utils.JWTService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(cfg *config.Config, db database.DatabaseInterface) *AuthHandler {
	return &AuthHandler{
		config:     cfg,
		db:         db,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// Login 邮箱密码登录，签发access/refresh令牌对
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.UserLoginRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		utils.WriteBadRequestResponse(w, "Email and password are required")
		return
	}

	user, err := h.db.FindUserByEmail(req.Email)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to look up account")
		return
	}
	// 不区分"账号不存在"和"密码错误"
	if user == nil || !utils.CheckPassword(user.Password, req.Password) {
		utils.WriteUnauthorizedResponse(w, "Invalid email or password")
		return
	}
	if !user.IsActive {
		utils.WriteForbiddenResponse(w, "Account is not active")
		return
	}

	accessToken, refreshToken, expiresIn, err := h.jwtService.GenerateTokenPair(user)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to generate session tokens")
		return
	}

	utils.WriteSuccessResponse(w, models.UserLoginResponse{
		User:         *user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		OrgID:        user.OrganizationID,
	})
}

// Refresh 用refresh令牌换新的access令牌
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshTokenRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if req.RefreshToken == "" {
		utils.WriteBadRequestResponse(w, "refresh_token is required")
		return
	}

	accessToken, expiresIn, err := h.jwtService.RefreshAccessToken(req.RefreshToken)
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Invalid refresh token")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"access_token": accessToken,
		"expires_in":   expiresIn,
	})
}

// Me 返回当前会话用户的完整档案
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	user, err := h.db.GetUserByID(sessionUser.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to load account")
		return
	}
	if user == nil {
		utils.WriteNotFoundResponse(w, "Account no longer exists")
		return
	}

	utils.WriteSuccessResponse(w, user)
}
