package api

import (
	"automation-worker/internal/api/common"
	"automation-worker/internal/api/event"
	"automation-worker/internal/api/health"
	"automation-worker/internal/api/trigger"
	"automation-worker/internal/config"
	"automation-worker/internal/store"
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ServiceRole is the role claim required on the protected routes.
const ServiceRole = "service_role"

type Server struct {
	Router  *chi.Mux
	store   store.Storer
	runner  trigger.BatchRunner
	metrics http.Handler
	cfg     *config.Config
	limiter *rate.Limiter
	Logger  *zap.Logger
}

// NewServer bouwt de router. metricsHandler mag nil zijn; dan is /metrics niet beschikbaar.
func NewServer(s store.Storer, runner trigger.BatchRunner, metricsHandler http.Handler, cfg *config.Config, log *zap.Logger) *Server {
	server := &Server{
		Router:  chi.NewRouter(),
		store:   s,
		runner:  runner,
		metrics: metricsHandler,
		cfg:     cfg,
		Logger:  log.With(zap.String("component", "api")),
	}
	if cfg.TriggerRateLimit > 0 {
		burst := int(math.Ceil(cfg.TriggerRateLimit))
		server.limiter = rate.NewLimiter(rate.Limit(cfg.TriggerRateLimit), burst)
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.Router.Use(middleware.RequestID)
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	if s.metrics != nil {
		s.Router.Handle("/metrics", s.metrics)
	}

	s.Router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health.HandleHealth(s.Logger))

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.With(s.rateLimitMiddleware).Post("/automation/process", trigger.HandleProcess(s.runner, s.Logger))
			r.Post("/projects/{projectId}/events", event.HandleEnqueue(s.store, s.Logger))
		})
	})
}

// authMiddleware valideert de service-role JWT. Zonder TRIGGER_JWT_SECRET staat auth uit.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.TriggerJWTSecret == "" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			common.WriteJSONError(w, http.StatusUnauthorized, "Geen authenticatie header", s.Logger)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		jwtKey := []byte(s.cfg.TriggerJWTSecret)

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("ongeldige signing method")
			}
			return jwtKey, nil
		})
		if err != nil || !token.Valid {
			common.WriteJSONError(w, http.StatusUnauthorized, "Ongeldige token", s.Logger)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			common.WriteJSONError(w, http.StatusUnauthorized, "Ongeldige claims", s.Logger)
			return
		}

		if role, _ := claims["role"].(string); role != ServiceRole {
			s.Logger.Warn("rejected token without service role", zap.Any("role", claims["role"]))
			common.WriteJSONError(w, http.StatusForbidden, "Service role vereist", s.Logger)
			return
		}

		sub, _ := claims.GetSubject()
		ctx := context.WithValue(r.Context(), common.SubjectContextKey, sub)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimitMiddleware begrenst het aantal trigger-aanroepen. TRIGGER_RATE_LIMIT=0 betekent onbeperkt.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			common.WriteJSONError(w, http.StatusTooManyRequests, "Too Many Requests", s.Logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}
