package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"insightform/internal/service"
	"insightform/internal/transport/rest/handler"
	"insightform/internal/transport/rest/middleware"
	"insightform/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService     *service.AuthService
	FormService     *service.FormService
	ResponseService *service.ResponseService
	ReportService   *service.ReportService
	WSHub           *ws.Hub
	Logger          *zap.Logger

	CORSAllowedOrigins []string
	TrustedProxies     []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	errs := handler.NewErrorWriter(c.Logger)
	authHandler := handler.NewAuthHandler(c.AuthService, errs)
	formHandler := handler.NewFormHandler(c.FormService, errs)
	responseHandler := handler.NewResponseHandler(c.ResponseService, errs)
	reportHandler := handler.NewReportHandler(c.ReportService, errs)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.FormService, c.CORSAllowedOrigins, c.Logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)
	loginLimit := middleware.NewRateLimiter(c.RateLimitRPS, c.RateLimitBurst)
	submitLimit := middleware.NewRateLimiter(c.RateLimitRPS, c.RateLimitBurst)

	proxies, err := middleware.NewProxyResolver(c.TrustedProxies)
	if err != nil {
		c.Logger.Warn("ignoring trusted proxy entries", zap.Error(err))
	}

	r.Use(proxies.Handler)
	r.Use(middleware.Logging(c.Logger))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	v1.Handle("/auth/login", loginLimit.Limit(http.HandlerFunc(authHandler.Login))).Methods("POST")
	v1.HandleFunc("/s/{slug}", formHandler.GetPublic).Methods("GET")
	v1.Handle("/s/{slug}/responses", submitLimit.Limit(http.HandlerFunc(responseHandler.Submit))).Methods("POST")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/forms/{formId}", wsHandler.FormWS).Methods("GET")

	// Owner routes (require user auth)
	ownerRoutes := v1.NewRoute().Subrouter()
	ownerRoutes.Use(authMW.RequireUser)

	ownerRoutes.HandleFunc("/forms", formHandler.Create).Methods("POST")
	ownerRoutes.HandleFunc("/forms", formHandler.List).Methods("GET")
	ownerRoutes.HandleFunc("/forms/{formId}", formHandler.Get).Methods("GET")
	ownerRoutes.HandleFunc("/forms/{formId}", formHandler.Update).Methods("PUT")
	ownerRoutes.HandleFunc("/forms/{formId}", formHandler.Delete).Methods("DELETE")
	ownerRoutes.HandleFunc("/forms/{formId}/close", formHandler.Close).Methods("POST")
	ownerRoutes.HandleFunc("/forms/{formId}/open", formHandler.Open).Methods("POST")
	ownerRoutes.HandleFunc("/forms/{formId}/responses", responseHandler.List).Methods("GET")

	// Report routes (owner only)
	ownerRoutes.HandleFunc("/forms/{formId}/charts", reportHandler.Charts).Methods("GET")
	ownerRoutes.HandleFunc("/forms/{formId}/report", reportHandler.Get).Methods("GET")
	ownerRoutes.HandleFunc("/forms/{formId}/report", reportHandler.Generate).Methods("POST")

	return cors.New(cors.Options{
		AllowedOrigins:   c.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(r)
}
