package handler

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/acervo-dev/acervo/internal/domain"
	"github.com/acervo-dev/acervo/internal/hateoas"
	"github.com/acervo-dev/acervo/internal/repository"
	"github.com/acervo-dev/acervo/internal/service"
)

// EmprestimoHandler handles loan endpoints.
type EmprestimoHandler struct {
	emprestimoService *service.EmprestimoService
	links             *hateoas.Builder
	validate          *validator.Validate
	logger            zerolog.Logger
}

// NewEmprestimoHandler creates a new EmprestimoHandler.
func NewEmprestimoHandler(
	emprestimoService *service.EmprestimoService,
	links *hateoas.Builder,
	validate *validator.Validate,
	logger zerolog.Logger,
) *EmprestimoHandler {
	return &EmprestimoHandler{
		emprestimoService: emprestimoService,
		links:             links,
		validate:          validate,
		logger:            logger.With().Str("handler", "emprestimo").Logger(),
	}
}

// abrirEmprestimoRequest is the loan creation body.
type abrirEmprestimoRequest struct {
	UsuarioID int64 `json:"usuario_id" validate:"required,gt=0"`
	LivroID   int64 `json:"livro_id" validate:"required,gt=0"`
}

// emprestimoResponse is a loan plus its navigation links.
type emprestimoResponse struct {
	*domain.EmprestimoDetalhado
	Links []hateoas.Link `json:"_links"`
}

// emprestimoMutationResponse confirms an open or close operation.
type emprestimoMutationResponse struct {
	Mensagem   string            `json:"mensagem"`
	Emprestimo *domain.Emprestimo `json:"emprestimo"`
	Links      []hateoas.Link    `json:"_links"`
}

func (h *EmprestimoHandler) respond(e *domain.EmprestimoDetalhado) emprestimoResponse {
	return emprestimoResponse{
		EmprestimoDetalhado: e,
		Links:               h.links.Emprestimo(e.ID, e.UsuarioID, e.LivroID, e.Devolvido),
	}
}

// List handles GET /emprestimos with an optional usuario_id filter.
func (h *EmprestimoHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter repository.EmprestimoFilter
	if v := r.URL.Query().Get("usuario_id"); v != "" {
		usuarioID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || usuarioID < 1 {
			writeDomainError(w, r, h.logger, domain.ErrEntradaInvalida)
			return
		}
		filter.UsuarioID = usuarioID
	}

	emprestimos, err := h.emprestimoService.ListEmprestimos(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	response := make([]emprestimoResponse, 0, len(emprestimos))
	for _, e := range emprestimos {
		response = append(response, h.respond(e))
	}
	writeJSON(w, http.StatusOK, response)
}

// Get handles GET /emprestimos/{id}.
func (h *EmprestimoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	emprestimo, err := h.emprestimoService.GetEmprestimo(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.respond(emprestimo))
}

// Abrir handles POST /emprestimos.
func (h *EmprestimoHandler) Abrir(w http.ResponseWriter, r *http.Request) {
	var req abrirEmprestimoRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeDomainError(w, r, h.logger, domain.ErrEntradaInvalida)
		return
	}

	output, err := h.emprestimoService.AbrirEmprestimo(r.Context(), service.AbrirEmprestimoInput{
		UsuarioID: req.UsuarioID,
		LivroID:   req.LivroID,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	e := output.Emprestimo
	writeJSON(w, http.StatusCreated, emprestimoMutationResponse{
		Mensagem:   "empréstimo realizado com sucesso",
		Emprestimo: e,
		Links:      h.links.Emprestimo(e.ID, e.UsuarioID, e.LivroID, e.Devolvido),
	})
}

// Devolver handles PUT /emprestimos/{id}/devolucao.
func (h *EmprestimoHandler) Devolver(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	output, err := h.emprestimoService.DevolverEmprestimo(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	e := output.Emprestimo
	writeJSON(w, http.StatusOK, emprestimoMutationResponse{
		Mensagem:   "devolução registrada com sucesso",
		Emprestimo: e,
		Links:      h.links.Emprestimo(e.ID, e.UsuarioID, e.LivroID, e.Devolvido),
	})
}
