package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/acervo-dev/acervo/internal/domain"
	"github.com/acervo-dev/acervo/internal/hateoas"
	"github.com/acervo-dev/acervo/internal/repository"
	"github.com/acervo-dev/acervo/internal/service"
)

// LivroHandler handles book endpoints.
type LivroHandler struct {
	livroService *service.LivroService
	links        *hateoas.Builder
	validate     *validator.Validate
	logger       zerolog.Logger
}

// NewLivroHandler creates a new LivroHandler.
func NewLivroHandler(
	livroService *service.LivroService,
	links *hateoas.Builder,
	validate *validator.Validate,
	logger zerolog.Logger,
) *LivroHandler {
	return &LivroHandler{
		livroService: livroService,
		links:        links,
		validate:     validate,
		logger:       logger.With().Str("handler", "livro").Logger(),
	}
}

// livroRequest is the create/update body. New books always start available;
// on update an omitted disponivel keeps the stored flag, since availability
// belongs to the loan operations.
type livroRequest struct {
	Titulo        string `json:"titulo" validate:"required"`
	ISBN          string `json:"isbn" validate:"required"`
	AnoPublicacao int    `json:"ano_publicacao" validate:"required,gt=0"`
	AutorID       int64  `json:"autor_id" validate:"required,gt=0"`
	Disponivel    *bool  `json:"disponivel"`
}

// livroResponse is a book plus its navigation links.
type livroResponse struct {
	*domain.Livro
	Links []hateoas.Link `json:"_links"`
}

func (h *LivroHandler) respond(livro *domain.Livro) livroResponse {
	return livroResponse{Livro: livro, Links: h.links.Livro(livro.ID, livro.Disponivel)}
}

// List handles GET /livros with filters (autor, autor_id, disponivel),
// paging (page, size) and sorting (sort, order).
func (h *LivroHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repository.LivroFilter{Autor: strings.TrimSpace(query.Get("autor"))}
	if v := query.Get("autor_id"); v != "" {
		autorID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || autorID < 1 {
			writeDomainError(w, r, h.logger, domain.ErrEntradaInvalida)
			return
		}
		filter.AutorID = autorID
	}
	if v := query.Get("disponivel"); v != "" {
		disponivel, err := strconv.ParseBool(v)
		if err != nil {
			writeDomainError(w, r, h.logger, domain.ErrEntradaInvalida)
			return
		}
		filter.Disponivel = &disponivel
	}

	opts := repository.ListOptions{
		Sort:       query.Get("sort"),
		Descending: strings.EqualFold(query.Get("order"), "desc"),
	}
	if v := query.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			writeDomainError(w, r, h.logger, domain.ErrEntradaInvalida)
			return
		}
		opts.Page = page
	}
	if v := query.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 {
			writeDomainError(w, r, h.logger, domain.ErrEntradaInvalida)
			return
		}
		opts.Size = size
	}

	output, err := h.livroService.ListLivros(r.Context(), service.ListLivrosInput{
		Filter: filter,
		Opts:   opts,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	response := make([]livroResponse, 0, len(output.Livros))
	for _, livro := range output.Livros {
		response = append(response, h.respond(livro))
	}
	writeJSON(w, http.StatusOK, response)
}

// Get handles GET /livros/{id}.
func (h *LivroHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	livro, err := h.livroService.GetLivro(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.respond(livro))
}

// Create handles POST /livros.
func (h *LivroHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req livroRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeDomainError(w, r, h.logger, domain.ErrEntradaInvalida)
		return
	}

	output, err := h.livroService.CreateLivro(r.Context(), service.CreateLivroInput{
		Titulo:        req.Titulo,
		ISBN:          req.ISBN,
		AnoPublicacao: req.AnoPublicacao,
		AutorID:       req.AutorID,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.respond(output.Livro))
}

// Update handles PUT /livros/{id}.
func (h *LivroHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	var req livroRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeDomainError(w, r, h.logger, domain.ErrEntradaInvalida)
		return
	}

	output, err := h.livroService.UpdateLivro(r.Context(), service.UpdateLivroInput{
		ID:            id,
		Titulo:        req.Titulo,
		ISBN:          req.ISBN,
		AnoPublicacao: req.AnoPublicacao,
		AutorID:       req.AutorID,
		Disponivel:    req.Disponivel,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.respond(output.Livro))
}

// Delete handles DELETE /livros/{id}.
func (h *LivroHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	if err := h.livroService.DeleteLivro(r.Context(), id); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
