// Package repository defines data access interfaces for Acervo.
// These interfaces abstract database operations, allowing for different
// implementations (PostgreSQL, SQLite, in-memory for testing) while keeping
// the service layer clean.
package repository

import (
	"context"
	"time"

	"github.com/acervo-dev/acervo/internal/domain"
)

// =============================================================================
// Autor Repository
// =============================================================================

// AutorRepository defines the interface for author data access.
type AutorRepository interface {
	// Create creates a new author.
	Create(ctx context.Context, autor *domain.Autor) error

	// GetByID retrieves an author by ID.
	GetByID(ctx context.Context, id int64) (*domain.Autor, error)

	// ExistsByNome checks, case-insensitively, if an author with the name exists.
	ExistsByNome(ctx context.Context, nome string) (bool, error)

	// Update updates an existing author.
	Update(ctx context.Context, autor *domain.Autor) error

	// Delete deletes an author by ID.
	// Returns domain.ErrRegistroReferenciado if books still reference the author.
	Delete(ctx context.Context, id int64) error

	// List returns all authors ordered by name ascending.
	List(ctx context.Context) ([]*domain.Autor, error)
}

// =============================================================================
// Usuario Repository
// =============================================================================

// UsuarioRepository defines the interface for user data access.
type UsuarioRepository interface {
	// Create creates a new user.
	Create(ctx context.Context, usuario *domain.Usuario) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.Usuario, error)

	// ExistsByEmail checks, case-insensitively, if a user with the email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Update updates an existing user.
	Update(ctx context.Context, usuario *domain.Usuario) error

	// Delete deletes a user by ID.
	// Returns domain.ErrRegistroReferenciado if loans still reference the user.
	Delete(ctx context.Context, id int64) error

	// List returns all users ordered by name ascending.
	List(ctx context.Context) ([]*domain.Usuario, error)
}

// =============================================================================
// Livro Repository
// =============================================================================

// LivroFilter contains the supported book list filters.
type LivroFilter struct {
	// Autor filters by partial, case-insensitive author name match.
	Autor string

	// AutorID filters by exact author when positive.
	AutorID int64

	// Disponivel filters by exact availability when non-nil.
	Disponivel *bool
}

// LivroRepository defines the interface for book data access.
type LivroRepository interface {
	// Create creates a new book. Autor.ID must reference an existing author.
	Create(ctx context.Context, livro *domain.Livro) error

	// GetByID retrieves a book joined with its author.
	GetByID(ctx context.Context, id int64) (*domain.Livro, error)

	// Update replaces a book's fields.
	Update(ctx context.Context, livro *domain.Livro) error

	// Delete deletes a book by ID.
	// Returns domain.ErrRegistroReferenciado if loans still reference the book.
	Delete(ctx context.Context, id int64) error

	// List returns books matching the filter, paginated and sorted.
	List(ctx context.Context, filter LivroFilter, opts ListOptions) ([]*domain.Livro, error)
}

// =============================================================================
// Emprestimo Repository
// =============================================================================

// EmprestimoFilter contains the supported loan list filters.
type EmprestimoFilter struct {
	// UsuarioID filters by holder when positive.
	UsuarioID int64
}

// EmprestimoRepository defines the interface for loan data access.
//
// Abrir and Devolver are composite operations: each executes the loan write
// and the book availability flip in a single transaction, using conditional
// updates so that concurrent attempts on the same book cannot both succeed.
type EmprestimoRepository interface {
	// List returns loans matching the filter, joined with user name and book
	// title, newest first.
	List(ctx context.Context, filter EmprestimoFilter) ([]*domain.EmprestimoDetalhado, error)

	// GetByID retrieves a loan joined with user name and book title.
	GetByID(ctx context.Context, id int64) (*domain.EmprestimoDetalhado, error)

	// CountAbertos returns the number of open loans held by a user.
	CountAbertos(ctx context.Context, usuarioID int64) (int64, error)

	// CountAtrasados returns the number of open loans held by a user whose
	// loan date is before the given cutoff.
	CountAtrasados(ctx context.Context, usuarioID int64, corte time.Time) (int64, error)

	// Abrir atomically inserts the loan and marks the book unavailable.
	// The book flip is conditional on it being available; a book already
	// checked out yields domain.ErrLivroIndisponivel and no row is inserted.
	// A missing book yields domain.ErrLivroNaoEncontrado.
	// On success the loan ID is populated.
	Abrir(ctx context.Context, emprestimo *domain.Emprestimo) error

	// Devolver atomically closes the loan, stamps the return date and marks
	// the book available again. Closing a loan that is already closed yields
	// domain.ErrEmprestimoJaDevolvido; a missing loan yields
	// domain.ErrEmprestimoNaoEncontrado. Returns the updated loan.
	Devolver(ctx context.Context, id int64, quando time.Time) (*domain.Emprestimo, error)
}

// =============================================================================
// Common Types
// =============================================================================

// ListOptions contains pagination and sort options for book listings.
// Page is 1-based; Sort is a query-level key validated against the allow-list.
type ListOptions struct {
	Page       int
	Size       int
	Sort       string
	Descending bool
}

// Offset translates the 1-based page to a row offset.
func (o ListOptions) Offset() int {
	page := o.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * o.Limit()
}

// Limit returns the effective page size.
func (o ListOptions) Limit() int {
	if o.Size < 1 {
		return DefaultPageSize
	}
	return o.Size
}

// DefaultPageSize is used when no page size is requested.
const DefaultPageSize = 10

// DefaultLivroSort is used when no sort key is requested.
const DefaultLivroSort = "titulo"

// livroSortColumns maps permitted sort keys to column identifiers.
// Anything outside this map is rejected; sort input is never interpolated.
var livroSortColumns = map[string]string{
	"id":             "id",
	"titulo":         "titulo",
	"isbn":           "isbn",
	"ano_publicacao": "ano_publicacao",
}

// LivroSortColumn resolves a sort key to a column identifier.
// An empty key resolves to the default sort.
func LivroSortColumn(key string) (string, bool) {
	if key == "" {
		key = DefaultLivroSort
	}
	col, ok := livroSortColumns[key]
	return col, ok
}
