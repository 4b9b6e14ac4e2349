package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/acervo-dev/acervo/internal/domain"
	"github.com/acervo-dev/acervo/internal/hateoas"
	"github.com/acervo-dev/acervo/internal/service"
)

// AutorHandler handles author endpoints.
type AutorHandler struct {
	autorService *service.AutorService
	links        *hateoas.Builder
	validate     *validator.Validate
	logger       zerolog.Logger
}

// NewAutorHandler creates a new AutorHandler.
func NewAutorHandler(
	autorService *service.AutorService,
	links *hateoas.Builder,
	validate *validator.Validate,
	logger zerolog.Logger,
) *AutorHandler {
	return &AutorHandler{
		autorService: autorService,
		links:        links,
		validate:     validate,
		logger:       logger.With().Str("handler", "autor").Logger(),
	}
}

// autorRequest is the create/update body.
type autorRequest struct {
	Nome string `json:"nome" validate:"required"`
}

// autorResponse is an author plus its navigation links.
type autorResponse struct {
	*domain.Autor
	Links []hateoas.Link `json:"_links"`
}

func (h *AutorHandler) respond(autor *domain.Autor) autorResponse {
	return autorResponse{Autor: autor, Links: h.links.Autor(autor.ID)}
}

// List handles GET /autores.
func (h *AutorHandler) List(w http.ResponseWriter, r *http.Request) {
	autores, err := h.autorService.ListAutores(r.Context())
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	response := make([]autorResponse, 0, len(autores))
	for _, autor := range autores {
		response = append(response, h.respond(autor))
	}
	writeJSON(w, http.StatusOK, response)
}

// Get handles GET /autores/{id}.
func (h *AutorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	autor, err := h.autorService.GetAutor(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.respond(autor))
}

// Create handles POST /autores.
func (h *AutorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req autorRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeDomainError(w, r, h.logger, domain.ErrEntradaInvalida)
		return
	}

	output, err := h.autorService.CreateAutor(r.Context(), service.CreateAutorInput{Nome: req.Nome})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.respond(output.Autor))
}

// Update handles PUT /autores/{id}.
func (h *AutorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	var req autorRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeDomainError(w, r, h.logger, domain.ErrEntradaInvalida)
		return
	}

	output, err := h.autorService.UpdateAutor(r.Context(), service.UpdateAutorInput{ID: id, Nome: req.Nome})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.respond(output.Autor))
}

// Delete handles DELETE /autores/{id}.
func (h *AutorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	if err := h.autorService.DeleteAutor(r.Context(), id); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
