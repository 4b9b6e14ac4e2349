// Package handler provides the HTTP surface for the Acervo API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/acervo-dev/acervo/internal/domain"
)

// errorResponse is the JSON error envelope. Codigo is a stable
// machine-readable identifier; Detalhe carries optional technical context
// for constraint violations.
type errorResponse struct {
	Erro      string `json:"erro"`
	Codigo    string `json:"codigo"`
	Timestamp string `json:"timestamp"`
	Caminho   string `json:"caminho"`
	Detalhe   string `json:"detalhe,omitempty"`
}

// Error codes used in the envelope.
const (
	codigoEntradaInvalida = "ENTRADA_INVALIDA"
	codigoNaoEncontrado   = "NAO_ENCONTRADO"
	codigoConflito        = "CONFLITO"
	codigoRegraDeNegocio  = "REGRA_DE_NEGOCIO"
	codigoErroInterno     = "ERRO_INTERNO"
)

// writeJSON serializes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError writes the error envelope.
func writeError(w http.ResponseWriter, r *http.Request, status int, codigo, erro string) {
	writeJSON(w, status, errorResponse{
		Erro:      erro,
		Codigo:    codigo,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Caminho:   r.URL.Path,
	})
}

// writeDomainError translates a domain or service error into the envelope.
// Unexpected errors are logged and become a generic 500 with no detail leaked.
func writeDomainError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrAutorNaoEncontrado),
		errors.Is(err, domain.ErrUsuarioNaoEncontrado),
		errors.Is(err, domain.ErrLivroNaoEncontrado),
		errors.Is(err, domain.ErrEmprestimoNaoEncontrado):
		writeError(w, r, http.StatusNotFound, codigoNaoEncontrado, err.Error())

	case errors.Is(err, domain.ErrAutorJaExiste),
		errors.Is(err, domain.ErrUsuarioJaExiste),
		errors.Is(err, domain.ErrEmprestimoJaDevolvido),
		errors.Is(err, domain.ErrRegistroReferenciado):
		writeError(w, r, http.StatusConflict, codigoConflito, err.Error())

	case errors.Is(err, domain.ErrEntradaInvalida),
		errors.Is(err, domain.ErrEmailInvalido),
		errors.Is(err, domain.ErrOrdenacaoInvalida):
		writeError(w, r, http.StatusBadRequest, codigoEntradaInvalida, err.Error())

	case errors.Is(err, domain.ErrLivroIndisponivel),
		errors.Is(err, domain.ErrLimiteEmprestimos),
		errors.Is(err, domain.ErrUsuarioComAtraso):
		writeError(w, r, http.StatusBadRequest, codigoRegraDeNegocio, err.Error())

	default:
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, r, http.StatusInternalServerError, codigoErroInterno, "erro interno do servidor")
	}
}

// parseIDParam reads the {id} route parameter as a positive integer.
func parseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrEntradaInvalida
	}
	return id, nil
}

// decodeBody decodes the request body into dst, rejecting malformed JSON.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.ErrEntradaInvalida
	}
	return nil
}
