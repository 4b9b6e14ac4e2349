package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Router wires the API routes under an optional base path.
type Router struct {
	autorHandler      *AutorHandler
	usuarioHandler    *UsuarioHandler
	livroHandler      *LivroHandler
	emprestimoHandler *EmprestimoHandler
	basePath          string
	extraMiddleware   []func(http.Handler) http.Handler
	logger            zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	AutorHandler      *AutorHandler
	UsuarioHandler    *UsuarioHandler
	LivroHandler      *LivroHandler
	EmprestimoHandler *EmprestimoHandler

	// BasePath prefixes every API route (e.g. "/api"). May be empty.
	BasePath string

	// Middleware is applied to every route after the built-in stack.
	Middleware []func(http.Handler) http.Handler

	Logger zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(config RouterConfig) *Router {
	return &Router{
		autorHandler:      config.AutorHandler,
		usuarioHandler:    config.UsuarioHandler,
		livroHandler:      config.LivroHandler,
		emprestimoHandler: config.EmprestimoHandler,
		basePath:          config.BasePath,
		extraMiddleware:   config.Middleware,
		logger:            config.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger(rt.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(rt.extraMiddleware...)

	r.NotFound(rt.handleNotFound)
	r.MethodNotAllowed(rt.handleMethodNotAllowed)

	r.Get("/health", rt.handleHealth)

	base := rt.basePath
	if base == "" {
		base = "/"
	}
	r.Route(base, func(r chi.Router) {
		r.Route("/autores", func(r chi.Router) {
			r.Get("/", rt.autorHandler.List)
			r.Post("/", rt.autorHandler.Create)
			r.Get("/{id}", rt.autorHandler.Get)
			r.Put("/{id}", rt.autorHandler.Update)
			r.Delete("/{id}", rt.autorHandler.Delete)
		})

		r.Route("/usuarios", func(r chi.Router) {
			r.Get("/", rt.usuarioHandler.List)
			r.Post("/", rt.usuarioHandler.Create)
			r.Get("/{id}", rt.usuarioHandler.Get)
			r.Put("/{id}", rt.usuarioHandler.Update)
			r.Delete("/{id}", rt.usuarioHandler.Delete)
		})

		r.Route("/livros", func(r chi.Router) {
			r.Get("/", rt.livroHandler.List)
			r.Post("/", rt.livroHandler.Create)
			r.Get("/{id}", rt.livroHandler.Get)
			r.Put("/{id}", rt.livroHandler.Update)
			r.Delete("/{id}", rt.livroHandler.Delete)
		})

		r.Route("/emprestimos", func(r chi.Router) {
			r.Get("/", rt.emprestimoHandler.List)
			r.Post("/", rt.emprestimoHandler.Abrir)
			r.Get("/{id}", rt.emprestimoHandler.Get)
			r.Put("/{id}/devolucao", rt.emprestimoHandler.Devolver)
		})
	})

	return r
}

// handleHealth handles health check requests.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleNotFound returns the error envelope for unmatched routes.
func (rt *Router) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, codigoNaoEncontrado, "rota não encontrada")
}

// handleMethodNotAllowed returns the error envelope for wrong methods.
func (rt *Router) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, codigoEntradaInvalida, "método não permitido")
}
