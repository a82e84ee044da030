package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/ollivarila/wsk2/docs"
	gqlapi "github.com/ollivarila/wsk2/internal/api/graphql"
	"github.com/ollivarila/wsk2/internal/api/handler"
	"github.com/ollivarila/wsk2/internal/api/middleware"
	"github.com/ollivarila/wsk2/internal/core/domain"
	"github.com/ollivarila/wsk2/internal/core/ports"
)

const defaultBodyLimit = "10M"

// Deps is everything the router needs. Limiter may be nil, in which case
// /graphql is not rate limited.
type Deps struct {
	Log       zerolog.Logger
	Dev       bool
	Principal middleware.PrincipalResolver
	Auth      ports.AuthService
	Users     ports.UserService
	Cats      ports.CatService
	Photos    *handler.PhotoIntake
	Limiter   middleware.Limiter
	Health    map[string]handler.HealthCheck
	BodyLimit string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log, d.Dev)

	bodyLimit := d.BodyLimit
	if bodyLimit == "" {
		bodyLimit = defaultBodyLimit
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("cats"))
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.BodyLimit(bodyLimit))

	// --- Operational endpoints (no auth) ---
	healthHandler := handler.NewHealthHandler(d.Health)
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authn := middleware.Authenticate(d.Principal)
	requireAuth := middleware.RequireAuth()
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	authHandler := handler.NewAuthHandler(d.Auth)
	userHandler := handler.NewUserHandler(d.Users)
	catHandler := handler.NewCatHandler(d.Cats, d.Photos)
	uploadHandler := handler.NewUploadHandler(d.Photos)

	// --- Auth ---
	e.POST("/auth/login", authHandler.Login)

	// --- Users ---
	users := e.Group("/user", authn)
	users.GET("", userHandler.List)
	users.POST("", authHandler.Register)
	users.PUT("", userHandler.UpdateSelf, requireAuth)
	users.DELETE("", userHandler.DeleteSelf, requireAuth)
	users.GET("/token", authHandler.CheckToken, requireAuth)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.UpdateAsAdmin, adminOnly)
	users.DELETE("/:id", userHandler.DeleteAsAdmin, adminOnly)

	// --- Cats ---
	cats := e.Group("/cat", authn)
	cats.GET("", catHandler.List)
	cats.POST("", catHandler.Create, requireAuth)
	cats.GET("/area", catHandler.Area)
	cats.GET("/user", catHandler.ListOwn, requireAuth)
	cats.PUT("/admin/:id", catHandler.UpdateAsAdmin, adminOnly)
	cats.DELETE("/admin/:id", catHandler.DeleteAsAdmin, adminOnly)
	cats.GET("/:id", catHandler.Get)
	cats.PUT("/:id", catHandler.Update, requireAuth)
	cats.DELETE("/:id", catHandler.Delete, requireAuth)

	// --- Photos ---
	e.POST("/upload", uploadHandler.Upload, authn, requireAuth)

	// --- GraphQL ---
	schema, err := gqlapi.NewSchema(gqlapi.NewResolver(d.Auth, d.Users, d.Cats, d.Dev, d.Log))
	if err != nil {
		return nil, err
	}
	graphqlHandler := gqlapi.NewHandler(schema)
	graphqlMiddleware := []echo.MiddlewareFunc{authn}
	if d.Limiter != nil {
		graphqlMiddleware = append(graphqlMiddleware, middleware.RateLimit(d.Limiter, d.Log))
	}
	e.POST("/graphql", graphqlHandler.Serve, graphqlMiddleware...)
	e.GET("/graphql", graphqlHandler.Serve, graphqlMiddleware...)

	return e, nil
}
