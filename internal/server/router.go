// Package server builds the HTTP router: global middleware, per-route gate chains and handlers.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	analyticshandler "bistro-boss/backend/internal/analytics/handler"
	carthandler "bistro-boss/backend/internal/cart/handler"
	healthhandler "bistro-boss/backend/internal/health/handler"
	menuhandler "bistro-boss/backend/internal/menu/handler"
	"bistro-boss/backend/internal/metrics"
	orderhandler "bistro-boss/backend/internal/order/handler"
	paymenthandler "bistro-boss/backend/internal/payment/handler"
	"bistro-boss/backend/internal/platform/rbac"
	reviewhandler "bistro-boss/backend/internal/review/handler"
	"bistro-boss/backend/internal/server/httperr"
	"bistro-boss/backend/internal/server/middleware"
	"bistro-boss/backend/internal/telemetry"
	userhandler "bistro-boss/backend/internal/user/handler"
)

// Deps holds dependencies for the router. Tokens, Users and Authz back the gate chains; every handler
// must be non-nil. Metrics and Telemetry may be nil. Empty CORSOrigins allows every origin.
type Deps struct {
	Logger      *zap.Logger
	CORSOrigins []string
	Tokens      rbac.TokenVerifier
	Users       rbac.UserGetter
	Authz       rbac.Authorizer
	Metrics     *metrics.Registry
	Telemetry   telemetry.EventEmitter

	Health    *healthhandler.Handler
	User      *userhandler.Handler
	Menu      *menuhandler.Handler
	Review    *reviewhandler.Handler
	Cart      *carthandler.Handler
	Payment   *paymenthandler.Handler
	Order     *orderhandler.Handler
	Analytics *analyticshandler.Handler
}

// untracedRoutes are not emitted as telemetry events.
var untracedRoutes = map[string]bool{"/": true, "/health": true, "/metrics": true}

// NewRouter returns the gin engine serving the public API.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.CORS(d.CORSOrigins),
		middleware.RequestContext(d.Logger),
		middleware.Tracing(),
		middleware.Metrics(d.Metrics),
		middleware.Telemetry(d.Telemetry, untracedRoutes),
		httperr.Middleware(),
	)

	authenticated := rbac.Authenticated(d.Tokens)
	user := middleware.Guard(authenticated, nil, d.Metrics)
	owner := func(resource middleware.ResourceFunc) gin.HandlerFunc {
		return middleware.Guard(rbac.Chain(authenticated, rbac.OwnsResource()), resource, d.Metrics)
	}
	admin := middleware.Guard(rbac.Chain(authenticated, rbac.IsAdmin(d.Users, d.Authz)), nil, d.Metrics)

	r.GET("/", d.Health.Root)
	r.GET("/health", d.Health.Check)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	r.POST("/jwt", d.User.IssueToken)
	r.POST("/users", d.User.Register)
	r.GET("/users", admin, d.User.List)
	r.GET("/users/admin/:email", owner(middleware.PathParam("email")), d.User.CheckAdmin)
	r.PATCH("/users/admin/:id", admin, d.User.Promote)

	r.GET("/menu", d.Menu.List)
	r.GET("/menu/:id", d.Menu.Get)
	r.GET("/reviews", d.Review.List)

	r.GET("/carts", owner(middleware.Query("email")), d.Cart.List)
	r.POST("/carts", user, d.Cart.Add)
	r.DELETE("/carts/:id", user, d.Cart.Remove)

	r.POST("/create-payment-intent", user, d.Payment.CreateIntent)
	r.POST("/payments", user, d.Order.Finalize)
	r.GET("/payments/:email", owner(middleware.PathParam("email")), d.Order.List)

	r.GET("/admin-stats", admin, d.Analytics.AdminStats)
	r.GET("/order-stats", admin, d.Analytics.OrderStats)

	return r
}
