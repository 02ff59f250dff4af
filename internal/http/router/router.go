// Package router arma el árbol de rutas del servidor.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/tomora/internal/http"
	alexactrl "github.com/dropDatabas3/tomora/internal/http/controllers/alexa"
	healthctrl "github.com/dropDatabas3/tomora/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/tomora/internal/http/controllers/oauth"
	"github.com/dropDatabas3/tomora/internal/http/helpers"
	mw "github.com/dropDatabas3/tomora/internal/http/middlewares"
	jwtx "github.com/dropDatabas3/tomora/internal/jwt"
	"github.com/dropDatabas3/tomora/internal/rate"
	"github.com/dropDatabas3/tomora/internal/store/core"
)

// Deps contiene todo lo que el router necesita para armar las rutas.
type Deps struct {
	Authorize *oauthctrl.AuthorizeController
	Login     *oauthctrl.LoginController
	Token     *oauthctrl.TokenController
	Info      *oauthctrl.InfoController
	Reminders *alexactrl.RemindersController
	Health    *healthctrl.Controller

	Issuer *jwtx.Issuer
	Repo   core.Repository

	// CORSAllowedOrigins habilita CORS para esos orígenes; vacío lo desactiva.
	CORSAllowedOrigins []string

	// LoginLimiter es opcional: nil desactiva el rate limit de /auth/login.
	LoginLimiter rate.Limiter

	// MetricsHandler es opcional: nil no publica /metrics.
	MetricsHandler http.Handler
}

// New construye el router con la cadena de middlewares global y las rutas.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Middlewares globales, de afuera hacia adentro: recover primero para
	// atrapar panics de todo lo demás.
	r.Use(mw.WithRecover())
	r.Use(mw.WithRequestID())
	if len(deps.CORSAllowedOrigins) > 0 {
		r.Use(mw.WithCORS(deps.CORSAllowedOrigins))
	}
	r.Use(mw.WithSecurityHeaders())
	r.Use(mw.WithLogging())

	// Flujo de autorización
	r.Method(http.MethodGet, "/auth", mw.Chain(
		http.HandlerFunc(deps.Authorize.Authorize),
		httpx.WithMetrics("/auth"),
	))

	loginMws := []mw.Middleware{httpx.WithMetrics("/auth/login"), mw.WithNoStore()}
	if deps.LoginLimiter != nil {
		loginMws = append(loginMws, mw.WithRateLimit(deps.LoginLimiter))
	}
	r.Method(http.MethodPost, "/auth/login", mw.Chain(
		http.HandlerFunc(deps.Login.Login),
		loginMws...,
	))

	r.Method(http.MethodPost, "/token", mw.Chain(
		http.HandlerFunc(deps.Token.Token),
		httpx.WithMetrics("/token"),
		mw.WithNoStore(),
	))

	r.Method(http.MethodGet, "/oauth/info", mw.Chain(
		http.HandlerFunc(deps.Info.Info),
		httpx.WithMetrics("/oauth/info"),
	))

	// Rutas protegidas de la skill
	r.Route("/alexa", func(r chi.Router) {
		r.Use(httpx.WithMetrics("/alexa/reminders"))
		r.Use(mw.RequireAuth(deps.Issuer, deps.Repo))
		r.Get("/reminders", deps.Reminders.List)
		r.Post("/reminders", deps.Reminders.Create)
	})

	// Operacionales
	r.Get("/healthz", deps.Health.Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		helpers.WriteError(w, helpers.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		helpers.WriteError(w, helpers.ErrMethodNotAllowed)
	})

	return r
}
