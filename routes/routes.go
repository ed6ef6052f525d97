package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dealer-portal-api/controllers"
	"dealer-portal-api/middleware"
	"dealer-portal-api/models"
	"dealer-portal-api/services"
)

// Services bundles the portal's service objects, constructed once in main.
type Services struct {
	Auth     *services.AuthService
	PCC      *services.PCCService
	Flags    *services.FeatureFlagService
	Audit    *services.AuditService
	Requests *services.AccessRequestService
}

func SetupRoutes(router *gin.Engine, db *gorm.DB, svc Services) {
	authCtl := controllers.NewAuthController(svc.Auth)
	submissionCtl := controllers.NewSubmissionController(svc.PCC)
	dashboardCtl := controllers.NewDashboardController(svc.PCC)
	moduleCtl := controllers.NewModuleController(svc.Flags)
	auditCtl := controllers.NewAuditController(svc.Audit)
	requestCtl := controllers.NewAccessRequestController(svc.Requests)

	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", authCtl.Login)
			public.POST("/login/otp", authCtl.VerifyOTP)
			public.POST("/access-requests", requestCtl.Submit)

			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Dealer Portal API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(db))
		{
			protected.POST("/logout", authCtl.Logout)
			protected.GET("/profile", authCtl.GetProfile)

			// PCC submissions; the whole module sits behind the dealer_pcc flag
			pcc := protected.Group("/pcc")
			pcc.Use(middleware.RequireModule(svc.Flags, models.ModuleDealerPCC))
			{
				pcc.GET("", submissionCtl.List)
				pcc.GET("/:id", submissionCtl.Get)
				pcc.GET("/reference/:ref", submissionCtl.GetByReference)

				// Only dealer roles submit concerns
				pcc.POST("", middleware.RequireRole(models.DealerRoles...), submissionCtl.Create)

				// Only manufacturer staff move submissions through review
				pcc.PUT("/:id/status", middleware.RequireRole(models.ManufacturerRoles...), submissionCtl.UpdateStatus)
			}

			protected.GET("/dashboard/stats", dashboardCtl.Stats)

			// Admin surface
			admin := protected.Group("/admin")
			{
				admin.GET("/modules", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin), moduleCtl.List)
				admin.PUT("/modules/:key", middleware.RequireRole(models.RoleSuperAdmin), moduleCtl.Set)

				admin.GET("/audit-logs", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin), auditCtl.List)

				requests := admin.Group("/access-requests", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin))
				{
					requests.GET("", requestCtl.ListPending)
					requests.POST("/:id/approve", requestCtl.Approve)
					requests.POST("/:id/reject", requestCtl.Reject)
				}
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Not found"})
	})
}
