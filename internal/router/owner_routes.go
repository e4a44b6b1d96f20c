package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Saishivram/paperroute/internal/handler"
	"github.com/Saishivram/paperroute/internal/middleware"
)

// OwnerHandlers bundles every handler mounted on the owner dashboard
// surface so registration stays one call in main.
type OwnerHandlers struct {
	Profile       *handler.ProfileHandler
	Employees     *handler.EmployeeHandler
	Customers     *handler.CustomerHandler
	Newspapers    *handler.NewspaperHandler
	Subscriptions *handler.SubscriptionHandler
	Payments      *handler.PaymentHandler
	Deliveries    *handler.DeliveryHandler
	Notifications *handler.NotificationHandler
	Assistant     *handler.AssistantHandler
}

// RegisterOwner registers OWNER-scoped endpoints under /v1. All routes
// require a valid JWT and the OWNER role. Extra middlewares (such as
// the response cache) run after authentication, so a cached response
// can only ever be served to a request that passed both checks.
func RegisterOwner(e *echo.Echo, h OwnerHandlers, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mws := append([]echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.RoleOwner),
	}, extra...)
	g := e.Group("/v1", mws...)

	// ---- Profile ----
	g.GET("/profile", h.Profile.Get)
	g.PATCH("/profile", h.Profile.Update)

	// ---- Employees ----
	g.POST("/employees", h.Employees.Create)
	g.GET("/employees", h.Employees.List)
	g.GET("/employees/:id", h.Employees.Get)
	g.PATCH("/employees/:id", h.Employees.Update)
	g.DELETE("/employees/:id", h.Employees.Delete)

	// ---- Customers (legacy bare-JSON surface) ----
	g.POST("/customers", h.Customers.Create)
	g.GET("/customers", h.Customers.List)
	g.GET("/customers/:id", h.Customers.Get)
	g.PATCH("/customers/:id", h.Customers.Update)
	g.DELETE("/customers/:id", h.Customers.Delete)

	// ---- Newspapers ----
	g.POST("/newspapers", h.Newspapers.Create)
	g.GET("/newspapers", h.Newspapers.List)
	g.GET("/newspapers/:id", h.Newspapers.Get)
	g.PATCH("/newspapers/:id", h.Newspapers.Update)
	g.DELETE("/newspapers/:id", h.Newspapers.Delete)

	// ---- Subscriptions ----
	g.POST("/subscriptions", h.Subscriptions.Create)
	g.GET("/subscriptions", h.Subscriptions.List)
	g.GET("/subscriptions/:id", h.Subscriptions.Get)
	g.PATCH("/subscriptions/:id", h.Subscriptions.Update)
	g.DELETE("/subscriptions/:id", h.Subscriptions.Cancel) // soft cancel

	// ---- Payments ----
	g.POST("/payments", h.Payments.Record)
	g.GET("/payments", h.Payments.List)
	g.GET("/payments/late", h.Payments.ListLate)
	g.GET("/payments/analytics", h.Payments.Analytics)
	g.GET("/payments/subscription/:id", h.Payments.ListBySubscription)

	// ---- Deliveries (legacy bare-JSON surface) ----
	g.POST("/deliveries", h.Deliveries.Create)
	g.GET("/deliveries", h.Deliveries.List)
	g.GET("/deliveries/worklist", h.Deliveries.Worklist)
	g.GET("/deliveries/date-range", h.Deliveries.ByDateRange)
	g.GET("/deliveries/analytics", h.Deliveries.Analytics)
	g.GET("/deliveries/employee/:employeeId", h.Deliveries.ByEmployee)
	g.PATCH("/deliveries/:id", h.Deliveries.UpdateStatus)

	// ---- Notifications ----
	g.POST("/notifications", h.Notifications.Create)
	g.GET("/notifications", h.Notifications.List)
	g.GET("/notifications/unread", h.Notifications.Unread)
	g.POST("/notifications/sweep", h.Notifications.Sweep)
	g.PATCH("/notifications/:id/read", h.Notifications.MarkRead)
	g.DELETE("/notifications/:id", h.Notifications.Delete)

	// ---- Assistant ----
	g.POST("/assistant/chat", h.Assistant.Chat)
}
