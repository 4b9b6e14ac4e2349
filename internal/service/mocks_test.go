package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/acervo-dev/acervo/internal/domain"
	"github.com/acervo-dev/acervo/internal/repository"
)

// Map-backed mocks implementing the repository interfaces. Error fields force
// infrastructure failures for the internal-error paths.

// =============================================================================
// MockAutorRepository
// =============================================================================

type MockAutorRepository struct {
	autores   map[int64]*domain.Autor
	nextID    int64
	createErr error
	getErr    error
	deleteErr error
}

func NewMockAutorRepository() *MockAutorRepository {
	return &MockAutorRepository{
		autores: make(map[int64]*domain.Autor),
		nextID:  1,
	}
}

func (m *MockAutorRepository) Create(ctx context.Context, autor *domain.Autor) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, a := range m.autores {
		if strings.EqualFold(a.Nome, autor.Nome) {
			return domain.ErrAutorJaExiste
		}
	}
	autor.ID = m.nextID
	m.nextID++
	m.autores[autor.ID] = autor
	return nil
}

func (m *MockAutorRepository) GetByID(ctx context.Context, id int64) (*domain.Autor, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if a, exists := m.autores[id]; exists {
		return a, nil
	}
	return nil, domain.ErrAutorNaoEncontrado
}

func (m *MockAutorRepository) ExistsByNome(ctx context.Context, nome string) (bool, error) {
	for _, a := range m.autores {
		if strings.EqualFold(a.Nome, nome) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockAutorRepository) Update(ctx context.Context, autor *domain.Autor) error {
	if _, exists := m.autores[autor.ID]; !exists {
		return domain.ErrAutorNaoEncontrado
	}
	m.autores[autor.ID] = autor
	return nil
}

func (m *MockAutorRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, exists := m.autores[id]; !exists {
		return domain.ErrAutorNaoEncontrado
	}
	delete(m.autores, id)
	return nil
}

func (m *MockAutorRepository) List(ctx context.Context) ([]*domain.Autor, error) {
	var result []*domain.Autor
	for _, a := range m.autores {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Nome < result[j].Nome })
	return result, nil
}

var _ repository.AutorRepository = (*MockAutorRepository)(nil)

// =============================================================================
// MockUsuarioRepository
// =============================================================================

type MockUsuarioRepository struct {
	usuarios  map[int64]*domain.Usuario
	nextID    int64
	createErr error
	getErr    error
	deleteErr error
}

func NewMockUsuarioRepository() *MockUsuarioRepository {
	return &MockUsuarioRepository{
		usuarios: make(map[int64]*domain.Usuario),
		nextID:   1,
	}
}

func (m *MockUsuarioRepository) Create(ctx context.Context, usuario *domain.Usuario) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.usuarios {
		if strings.EqualFold(u.Email, usuario.Email) {
			return domain.ErrUsuarioJaExiste
		}
	}
	usuario.ID = m.nextID
	m.nextID++
	m.usuarios[usuario.ID] = usuario
	return nil
}

func (m *MockUsuarioRepository) GetByID(ctx context.Context, id int64) (*domain.Usuario, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, exists := m.usuarios[id]; exists {
		return u, nil
	}
	return nil, domain.ErrUsuarioNaoEncontrado
}

func (m *MockUsuarioRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range m.usuarios {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUsuarioRepository) Update(ctx context.Context, usuario *domain.Usuario) error {
	if _, exists := m.usuarios[usuario.ID]; !exists {
		return domain.ErrUsuarioNaoEncontrado
	}
	m.usuarios[usuario.ID] = usuario
	return nil
}

func (m *MockUsuarioRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, exists := m.usuarios[id]; !exists {
		return domain.ErrUsuarioNaoEncontrado
	}
	delete(m.usuarios, id)
	return nil
}

func (m *MockUsuarioRepository) List(ctx context.Context) ([]*domain.Usuario, error) {
	var result []*domain.Usuario
	for _, u := range m.usuarios {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Nome < result[j].Nome })
	return result, nil
}

var _ repository.UsuarioRepository = (*MockUsuarioRepository)(nil)

// =============================================================================
// MockLivroRepository
// =============================================================================

type MockLivroRepository struct {
	livros    map[int64]*domain.Livro
	nextID    int64
	createErr error
	getErr    error
	deleteErr error
}

func NewMockLivroRepository() *MockLivroRepository {
	return &MockLivroRepository{
		livros: make(map[int64]*domain.Livro),
		nextID: 1,
	}
}

func (m *MockLivroRepository) Create(ctx context.Context, livro *domain.Livro) error {
	if m.createErr != nil {
		return m.createErr
	}
	livro.ID = m.nextID
	m.nextID++
	m.livros[livro.ID] = livro
	return nil
}

func (m *MockLivroRepository) GetByID(ctx context.Context, id int64) (*domain.Livro, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if l, exists := m.livros[id]; exists {
		return l, nil
	}
	return nil, domain.ErrLivroNaoEncontrado
}

func (m *MockLivroRepository) Update(ctx context.Context, livro *domain.Livro) error {
	if _, exists := m.livros[livro.ID]; !exists {
		return domain.ErrLivroNaoEncontrado
	}
	m.livros[livro.ID] = livro
	return nil
}

func (m *MockLivroRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, exists := m.livros[id]; !exists {
		return domain.ErrLivroNaoEncontrado
	}
	delete(m.livros, id)
	return nil
}

func (m *MockLivroRepository) List(ctx context.Context, filter repository.LivroFilter, opts repository.ListOptions) ([]*domain.Livro, error) {
	if _, ok := repository.LivroSortColumn(opts.Sort); !ok {
		return nil, domain.ErrOrdenacaoInvalida
	}

	var result []*domain.Livro
	for _, l := range m.livros {
		if filter.Autor != "" && !strings.Contains(strings.ToLower(l.Autor.Nome), strings.ToLower(filter.Autor)) {
			continue
		}
		if filter.AutorID > 0 && l.Autor.ID != filter.AutorID {
			continue
		}
		if filter.Disponivel != nil && l.Disponivel != *filter.Disponivel {
			continue
		}
		result = append(result, l)
	}
	sort.Slice(result, func(i, j int) bool {
		if opts.Descending {
			return result[i].ID > result[j].ID
		}
		return result[i].ID < result[j].ID
	})

	offset := opts.Offset()
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit := opts.Limit(); len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

var _ repository.LivroRepository = (*MockLivroRepository)(nil)

// =============================================================================
// MockEmprestimoRepository
// =============================================================================

// MockEmprestimoRepository keeps a reference to the book mock so Abrir and
// Devolver can flip availability the way the real composite operations do.
type MockEmprestimoRepository struct {
	emprestimos map[int64]*domain.Emprestimo
	livros      *MockLivroRepository
	nextID      int64
	listErr     error
	countErr    error
	abrirErr    error
}

func NewMockEmprestimoRepository(livros *MockLivroRepository) *MockEmprestimoRepository {
	return &MockEmprestimoRepository{
		emprestimos: make(map[int64]*domain.Emprestimo),
		livros:      livros,
		nextID:      1,
	}
}

func (m *MockEmprestimoRepository) List(ctx context.Context, filter repository.EmprestimoFilter) ([]*domain.EmprestimoDetalhado, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*domain.EmprestimoDetalhado
	for _, e := range m.emprestimos {
		if filter.UsuarioID > 0 && e.UsuarioID != filter.UsuarioID {
			continue
		}
		result = append(result, m.detalhar(e))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DataEmprestimo.After(result[j].DataEmprestimo)
	})
	return result, nil
}

func (m *MockEmprestimoRepository) GetByID(ctx context.Context, id int64) (*domain.EmprestimoDetalhado, error) {
	if e, exists := m.emprestimos[id]; exists {
		return m.detalhar(e), nil
	}
	return nil, domain.ErrEmprestimoNaoEncontrado
}

func (m *MockEmprestimoRepository) CountAbertos(ctx context.Context, usuarioID int64) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	var count int64
	for _, e := range m.emprestimos {
		if e.UsuarioID == usuarioID && e.Aberto() {
			count++
		}
	}
	return count, nil
}

func (m *MockEmprestimoRepository) CountAtrasados(ctx context.Context, usuarioID int64, corte time.Time) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	var count int64
	for _, e := range m.emprestimos {
		if e.UsuarioID == usuarioID && e.Aberto() && e.DataEmprestimo.Before(corte) {
			count++
		}
	}
	return count, nil
}

func (m *MockEmprestimoRepository) Abrir(ctx context.Context, emprestimo *domain.Emprestimo) error {
	if m.abrirErr != nil {
		return m.abrirErr
	}
	livro, exists := m.livros.livros[emprestimo.LivroID]
	if !exists {
		return domain.ErrLivroNaoEncontrado
	}
	if !livro.Disponivel {
		return domain.ErrLivroIndisponivel
	}
	livro.Disponivel = false

	emprestimo.ID = m.nextID
	m.nextID++
	m.emprestimos[emprestimo.ID] = emprestimo
	return nil
}

func (m *MockEmprestimoRepository) Devolver(ctx context.Context, id int64, quando time.Time) (*domain.Emprestimo, error) {
	e, exists := m.emprestimos[id]
	if !exists {
		return nil, domain.ErrEmprestimoNaoEncontrado
	}
	if e.Devolvido {
		return nil, domain.ErrEmprestimoJaDevolvido
	}
	e.Devolvido = true
	e.DataDevolucao = &quando
	if livro, exists := m.livros.livros[e.LivroID]; exists {
		livro.Disponivel = true
	}
	return e, nil
}

func (m *MockEmprestimoRepository) detalhar(e *domain.Emprestimo) *domain.EmprestimoDetalhado {
	d := &domain.EmprestimoDetalhado{Emprestimo: *e}
	if livro, exists := m.livros.livros[e.LivroID]; exists {
		d.LivroTitulo = livro.Titulo
	}
	return d
}

var _ repository.EmprestimoRepository = (*MockEmprestimoRepository)(nil)
