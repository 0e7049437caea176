package httpserver

import (
	"github.com/meenabazaar/order-management/internal/core/domain/user"
)

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", s.login)
	auth.POST("/register", s.register)
	auth.POST("/forgot-password", s.forgotPassword)
	auth.POST("/reset-password/:token", s.resetPassword)

	// Sheet-import webhook; called by the spreadsheet integration, not by
	// logged-in users.
	api.POST("/orders/hook", s.orderHook)

	protected := api.Group("")
	protected.Use(s.middleware.JWT.RequireJWT())

	protected.POST("/auth/change-password", s.changePassword)

	adminOnly := s.middleware.JWT.RequireRoles(user.RoleAdmin)
	adminOrManager := s.middleware.JWT.RequireRoles(user.RoleAdmin, user.RoleBranchManager)

	orders := protected.Group("/orders")
	orders.GET("", s.listOrders)
	orders.POST("", s.createOrder, adminOrManager)
	orders.GET("/counts", s.orderCounts)
	orders.GET("/today-deliveries", s.todayDeliveries)
	orders.POST("/complete-delivery", s.completeDelivery)
	orders.PATCH("/:id/payment", s.updatePaymentStatus, adminOnly)
	orders.GET("/:orderId", s.getOrder)
	orders.PUT("/:orderId", s.updateOrder)

	users := protected.Group("/users")
	users.GET("", s.listUsers, adminOrManager)
	users.POST("", s.createUser, adminOnly)
	users.GET("/me", s.getOwnProfile)
	users.GET("/active", s.listActiveUsers, adminOnly)
	users.GET("/counts", s.userCounts, adminOrManager)
	users.GET("/:id", s.getUser, adminOnly)
	users.PUT("/:id", s.updateUser, adminOnly)
	users.DELETE("/:id", s.deleteUser, adminOnly)

	branches := protected.Group("/branches")
	branches.GET("", s.listBranches, adminOnly)
	branches.POST("", s.createBranch, adminOnly)
	branches.GET("/names", s.listBranchNames)
	branches.GET("/counts", s.branchCounts, adminOnly)
	branches.GET("/me", s.getOwnBranch, s.middleware.JWT.RequireRoles(user.RoleBranchManager))
	branches.GET("/:id", s.getBranch, adminOnly)
	branches.PUT("/:id", s.updateBranch, adminOnly)
	branches.DELETE("/:id", s.deleteBranch, adminOnly)
}
