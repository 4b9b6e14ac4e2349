package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acervo-dev/acervo/internal/hateoas"
	"github.com/acervo-dev/acervo/internal/service"
)

// newTestRouter builds a router whose services have no repositories behind
// them. Only paths rejected before any store access are exercised here; the
// business paths are covered by the service tests.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	links := hateoas.NewBuilder("/api")
	validate := validator.New()

	autorSvc := service.NewAutorService(nil, logger)
	usuarioSvc := service.NewUsuarioService(nil, logger)
	livroSvc := service.NewLivroService(nil, nil, logger)
	emprestimoSvc := service.NewEmprestimoService(nil, nil, nil, logger, 0, 0)

	rt := NewRouter(RouterConfig{
		AutorHandler:      NewAutorHandler(autorSvc, links, validate, logger),
		UsuarioHandler:    NewUsuarioHandler(usuarioSvc, links, validate, logger),
		LivroHandler:      NewLivroHandler(livroSvc, links, validate, logger),
		EmprestimoHandler: NewEmprestimoHandler(emprestimoSvc, links, validate, logger),
		BasePath:          "/api",
		Logger:            logger,
	})
	return rt.Handler()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var envelope errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestRouter_Health(t *testing.T) {
	rec := doRequest(t, newTestRouter(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRouter_UnmatchedRouteEnvelope(t *testing.T) {
	rec := doRequest(t, newTestRouter(t), http.MethodGet, "/api/estantes", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "NAO_ENCONTRADO", envelope.Codigo)
	assert.Equal(t, "/api/estantes", envelope.Caminho)
	assert.NotEmpty(t, envelope.Erro)
	assert.NotEmpty(t, envelope.Timestamp)
}

func TestRouter_RequestIDHeader(t *testing.T) {
	rec := doRequest(t, newTestRouter(t), http.MethodGet, "/health", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRouter_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{
			name:   "malformed loan body",
			method: http.MethodPost,
			path:   "/api/emprestimos",
			body:   `{"usuario_id": "not-a-number"}`,
		},
		{
			name:   "loan body missing livro_id",
			method: http.MethodPost,
			path:   "/api/emprestimos",
			body:   `{"usuario_id": 1}`,
		},
		{
			name:   "non-numeric author id",
			method: http.MethodGet,
			path:   "/api/autores/abc",
		},
		{
			name:   "blank author name",
			method: http.MethodPost,
			path:   "/api/autores",
			body:   `{"nome": ""}`,
		},
		{
			name:   "book missing author",
			method: http.MethodPost,
			path:   "/api/livros",
			body:   `{"titulo": "Dom Casmurro", "isbn": "9788535910663", "ano_publicacao": 1899}`,
		},
		{
			name:   "non-boolean availability filter",
			method: http.MethodGet,
			path:   "/api/livros?disponivel=talvez",
		},
		{
			name:   "zero page",
			method: http.MethodGet,
			path:   "/api/livros?page=0",
		},
		{
			name:   "non-numeric author id filter",
			method: http.MethodGet,
			path:   "/api/livros?autor_id=machado",
		},
		{
			name:   "non-numeric user id filter on loans",
			method: http.MethodGet,
			path:   "/api/emprestimos?usuario_id=maria",
		},
	}

	router := newTestRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			envelope := decodeEnvelope(t, rec)
			assert.Equal(t, "ENTRADA_INVALIDA", envelope.Codigo)
			assert.Equal(t, strings.SplitN(tt.path, "?", 2)[0], envelope.Caminho)
		})
	}
}
