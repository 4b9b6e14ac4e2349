package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/acervo-dev/acervo/internal/domain"
	"github.com/acervo-dev/acervo/internal/hateoas"
	"github.com/acervo-dev/acervo/internal/service"
)

// UsuarioHandler handles user endpoints.
type UsuarioHandler struct {
	usuarioService *service.UsuarioService
	links          *hateoas.Builder
	validate       *validator.Validate
	logger         zerolog.Logger
}

// NewUsuarioHandler creates a new UsuarioHandler.
func NewUsuarioHandler(
	usuarioService *service.UsuarioService,
	links *hateoas.Builder,
	validate *validator.Validate,
	logger zerolog.Logger,
) *UsuarioHandler {
	return &UsuarioHandler{
		usuarioService: usuarioService,
		links:          links,
		validate:       validate,
		logger:         logger.With().Str("handler", "usuario").Logger(),
	}
}

// usuarioRequest is the create/update body. Email format is fully validated
// at the service layer; here only presence is checked.
type usuarioRequest struct {
	Nome  string `json:"nome" validate:"required"`
	Email string `json:"email" validate:"required"`
}

// usuarioResponse is a user plus its navigation links.
type usuarioResponse struct {
	*domain.Usuario
	Links []hateoas.Link `json:"_links"`
}

func (h *UsuarioHandler) respond(usuario *domain.Usuario) usuarioResponse {
	return usuarioResponse{Usuario: usuario, Links: h.links.Usuario(usuario.ID)}
}

// List handles GET /usuarios.
func (h *UsuarioHandler) List(w http.ResponseWriter, r *http.Request) {
	usuarios, err := h.usuarioService.ListUsuarios(r.Context())
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	response := make([]usuarioResponse, 0, len(usuarios))
	for _, usuario := range usuarios {
		response = append(response, h.respond(usuario))
	}
	writeJSON(w, http.StatusOK, response)
}

// Get handles GET /usuarios/{id}.
func (h *UsuarioHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	usuario, err := h.usuarioService.GetUsuario(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.respond(usuario))
}

// Create handles POST /usuarios.
func (h *UsuarioHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req usuarioRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeDomainError(w, r, h.logger, domain.ErrEntradaInvalida)
		return
	}

	output, err := h.usuarioService.CreateUsuario(r.Context(), service.CreateUsuarioInput{
		Nome:  req.Nome,
		Email: req.Email,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.respond(output.Usuario))
}

// Update handles PUT /usuarios/{id}.
func (h *UsuarioHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	var req usuarioRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeDomainError(w, r, h.logger, domain.ErrEntradaInvalida)
		return
	}

	output, err := h.usuarioService.UpdateUsuario(r.Context(), service.UpdateUsuarioInput{
		ID:    id,
		Nome:  req.Nome,
		Email: req.Email,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.respond(output.Usuario))
}

// Delete handles DELETE /usuarios/{id}.
func (h *UsuarioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	if err := h.usuarioService.DeleteUsuario(r.Context(), id); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
