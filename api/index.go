package handler

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/config"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/database"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/handlers"
	customMiddleware "github.com/techxudo-devs/techxudo-oms-server/pkg/middleware"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/services"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/utils"
)

// 无服务器入口复用同一个路由器实例
var (
	routerOnce   sync.Once
	cachedRouter *chi.Mux
)

// Handler 是无服务器函数的入口点
// 实现"单体路由模式"，所有API端点集中在一个Chi路由器中管理
func Handler(w http.ResponseWriter, r *http.Request) {
	cfg := config.GetCached()

	if err := cfg.Validate(); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Configuration error: "+err.Error())
		return
	}

	routerOnce.Do(func() {
		db := database.NewDatabase(database.DatabaseConfig{
			UseLocalDB:   cfg.UseLocalDB,
			LocalDataDir: cfg.LocalDataDir,
			PostgresDSN:  cfg.PostgresDSN,
			Debug:        cfg.Debug,
		})
		cachedRouter = NewRouter(cfg, db)
	})

	cachedRouter.ServeHTTP(w, r)
}

// NewRouter 构建完整路由器（常驻服务和无服务器入口共用）
func NewRouter(cfg *config.Config, db database.DatabaseInterface) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg)
	setupRoutes(router, cfg, db)

	return router
}

// setupMiddleware 设置全局中间件
func setupMiddleware(router *chi.Mux, cfg *config.Config) {
	// 基础中间件
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	// Normalize path and restore scheme/host before logging and routing
	router.Use(customMiddleware.Normalize())
	router.Use(customMiddleware.Logger(cfg))
	router.Use(customMiddleware.Recovery(cfg))

	// CORS中间件
	router.Use(customMiddleware.CORS(cfg))

	// 超时与压缩
	router.Use(middleware.Timeout(25 * time.Second))
	router.Use(middleware.Compress(5))

	// 请求体大小上限
	router.Use(customMiddleware.MaxBodySize(1 << 20))

	// 开发环境额外中间件
	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

// setupRoutes 设置所有API路由
func setupRoutes(router *chi.Mux, cfg *config.Config, db database.DatabaseInterface) {
	// 事件总线与通知
	events := services.NewEventBus()
	mailer := services.NewMailer(cfg)
	notify := services.NewNotificationService(mailer, cfg.FrontendURL)

	// 业务服务（依赖从下游到上游装配）
	orgs := services.NewOrgService(db)
	contracts := services.NewContractService(db, orgs, notify, events)
	forms := services.NewEmploymentFormService(db, orgs, contracts, notify, cfg.AutoChainContracts)
	onboarding := services.NewOnboardingService(db, orgs, forms, notify)
	appointments := services.NewAppointmentService(db, orgs, notify, events)
	hiring := services.NewHiringService(db, orgs, onboarding, notify)

	// 处理器
	authHandler := handlers.NewAuthHandler(cfg, db)
	orgHandler := handlers.NewOrganizationHandler(db, orgs)
	onboardingHandler := handlers.NewOnboardingHandler(cfg, onboarding, orgs, notify)
	formHandler := handlers.NewEmploymentFormHandler(forms)
	contractHandler := handlers.NewContractHandler(contracts)
	appointmentHandler := handlers.NewAppointmentHandler(appointments)
	hiringHandler := handlers.NewHiringHandler(cfg, hiring)
	attendanceHandler := handlers.NewAttendanceHandler(db)
	healthHandler := handlers.NewHealthHandler(db)

	// 健康检查端点
	router.Get("/", healthHandler.Health)
	router.Get("/health", healthHandler.Health)

	// API路由组
	router.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.ContentTypeJSON)

		// 公开路由（不需要认证）
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(customMiddleware.AuthMiddleware(cfg))
				r.Get("/me", authHandler.Me)
			})
		})

		// 租户开通
		r.Post("/organizations/setup", orgHandler.Setup)

		// 候选人/员工通过邮件链接访问的 token 端点
		r.Route("/onboarding", func(r chi.Router) {
			r.Get("/{token}", onboardingHandler.GetByToken)
			r.Post("/{token}/accept", onboardingHandler.Accept)
			r.Post("/{token}/reject", onboardingHandler.Reject)
			r.Post("/{token}/complete", onboardingHandler.Complete)
			r.Post("/{token}/ensure-form", onboardingHandler.EnsureForm)
		})

		r.Route("/employment-forms", func(r chi.Router) {
			r.Get("/view/{token}", formHandler.GetByToken)
			r.Post("/submit/{token}", formHandler.Submit)
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Get("/view/{token}", contractHandler.GetByToken)
			r.Post("/sign/{token}", contractHandler.Sign)
		})

		r.Route("/appointments", func(r chi.Router) {
			r.Get("/view/{token}", appointmentHandler.View)
			r.Post("/respond/{token}", appointmentHandler.Respond)
		})

		// 员工自助路由（需要认证与组织上下文）
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.AuthMiddleware(cfg))
			r.Use(customMiddleware.OrgContext(orgs))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", attendanceHandler.CheckIn)
				r.Post("/check-out", attendanceHandler.CheckOut)
				r.Get("/", attendanceHandler.List)
			})
		})

		// 管理端路由
		r.Route("/admin", func(r chi.Router) {
			r.Use(customMiddleware.AuthMiddleware(cfg))
			r.Use(customMiddleware.RequireAdmin)
			r.Use(customMiddleware.OrgContext(orgs))

			r.Route("/organization", func(r chi.Router) {
				r.Get("/", orgHandler.Get)
				r.Put("/profile", orgHandler.UpdateProfile)
				r.Put("/theme", orgHandler.UpdateTheme)
				r.Post("/departments", orgHandler.AddDepartment)
				r.Delete("/departments", orgHandler.RemoveDepartment)
			})

			r.Route("/onboardings", func(r chi.Router) {
				r.Post("/", onboardingHandler.CreateEmployee)
				r.Get("/", onboardingHandler.List)
				r.Get("/stats", onboardingHandler.Stats)
				r.Get("/{id}", onboardingHandler.Get)
				r.Post("/{id}/revoke", onboardingHandler.Revoke)
				r.Post("/{id}/resend", onboardingHandler.Resend)
			})

			r.Route("/employment-forms", func(r chi.Router) {
				r.Post("/", formHandler.Create)
				r.Get("/", formHandler.List)
				r.Get("/{id}", formHandler.Get)
				r.Post("/{id}/review", formHandler.Review)
				r.Post("/{id}/request-revision", formHandler.RequestRevision)
			})

			r.Route("/contracts", func(r chi.Router) {
				r.Post("/", contractHandler.Create)
				r.Get("/", contractHandler.List)
				r.Get("/{id}", contractHandler.Get)
				r.Post("/{id}/send", contractHandler.Send)
				r.Post("/{id}/complete", contractHandler.Complete)
				r.Post("/{id}/terminate", contractHandler.Terminate)
			})

			r.Route("/appointments", func(r chi.Router) {
				r.Post("/", appointmentHandler.Send)
				r.Get("/", appointmentHandler.List)
				r.Get("/{id}", appointmentHandler.Get)
			})

			r.Route("/hiring", func(r chi.Router) {
				r.Post("/candidates", hiringHandler.CreateCandidate)
				r.Get("/candidates/{id}", hiringHandler.GetCandidate)
				r.Post("/applications", hiringHandler.CreateApplication)
				r.Get("/applications", hiringHandler.ListApplications)
				r.Get("/applications/stats", hiringHandler.Stats)
				r.Get("/applications/{id}", hiringHandler.GetApplication)
				r.Post("/applications/{id}/stage", hiringHandler.MoveStage)
				r.Post("/applications/{id}/notes", hiringHandler.AddNote)
				r.Delete("/applications/{id}", hiringHandler.DeleteApplication)
			})

			// 开发辅助路由（生产环境不挂载）
			if !cfg.IsProduction() {
				devHandler := handlers.NewDevHandler(onboarding)
				r.Delete("/dev/onboardings", devHandler.PurgeOnboardings)
			}
		})
	})

	// 404处理
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})

	// 405处理
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponseWithCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path), "")
	})
}
