package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/acervo-dev/acervo/internal/domain"
	"github.com/acervo-dev/acervo/internal/repository"
)

var postgresDialect = goqu.Dialect("postgres")

// livroRepository implements repository.LivroRepository for PostgreSQL.
type livroRepository struct {
	db *DB
}

// NewLivroRepository creates a new PostgreSQL book repository.
func NewLivroRepository(db *DB) repository.LivroRepository {
	return &livroRepository{db: db}
}

// Create creates a new book.
func (r *livroRepository) Create(ctx context.Context, livro *domain.Livro) error {
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO livros (titulo, isbn, ano_publicacao, disponivel, autor_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		livro.Titulo,
		livro.ISBN,
		livro.AnoPublicacao,
		livro.Disponivel,
		livro.Autor.ID,
	).Scan(&livro.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrAutorNaoEncontrado
		}
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// GetByID retrieves a book joined with its author.
func (r *livroRepository) GetByID(ctx context.Context, id int64) (*domain.Livro, error) {
	livro := &domain.Livro{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT l.id, l.titulo, l.isbn, l.ano_publicacao, l.disponivel, a.id, a.nome
		 FROM livros l
		 JOIN autores a ON l.autor_id = a.id
		 WHERE l.id = $1`, id).
		Scan(
			&livro.ID,
			&livro.Titulo,
			&livro.ISBN,
			&livro.AnoPublicacao,
			&livro.Disponivel,
			&livro.Autor.ID,
			&livro.Autor.Nome,
		)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrLivroNaoEncontrado
		}
		return nil, fmt.Errorf("failed to get book by ID: %w", err)
	}
	return livro, nil
}

// Update replaces a book's fields.
func (r *livroRepository) Update(ctx context.Context, livro *domain.Livro) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE livros
		 SET titulo = $1, isbn = $2, ano_publicacao = $3, disponivel = $4, autor_id = $5
		 WHERE id = $6`,
		livro.Titulo,
		livro.ISBN,
		livro.AnoPublicacao,
		livro.Disponivel,
		livro.Autor.ID,
		livro.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrAutorNaoEncontrado
		}
		return fmt.Errorf("failed to update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLivroNaoEncontrado
	}
	return nil
}

// Delete deletes a book by ID.
func (r *livroRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM livros WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrRegistroReferenciado
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLivroNaoEncontrado
	}
	return nil
}

// List returns books matching the filter, paginated and sorted.
// The sort key is resolved against the allow-list; it is never interpolated.
func (r *livroRepository) List(ctx context.Context, filter repository.LivroFilter, opts repository.ListOptions) ([]*domain.Livro, error) {
	col, ok := repository.LivroSortColumn(opts.Sort)
	if !ok {
		return nil, domain.ErrOrdenacaoInvalida
	}

	ds := postgresDialect.
		From(goqu.T("livros").As("l")).
		Join(goqu.T("autores").As("a"), goqu.On(goqu.Ex{"l.autor_id": goqu.I("a.id")})).
		Select(
			goqu.I("l.id"),
			goqu.I("l.titulo"),
			goqu.I("l.isbn"),
			goqu.I("l.ano_publicacao"),
			goqu.I("l.disponivel"),
			goqu.I("a.id").As("autor_id"),
			goqu.I("a.nome").As("autor_nome"),
		)

	if filter.Autor != "" {
		ds = ds.Where(goqu.Func("LOWER", goqu.I("a.nome")).
			Like("%" + strings.ToLower(filter.Autor) + "%"))
	}
	if filter.AutorID > 0 {
		ds = ds.Where(goqu.I("l.autor_id").Eq(filter.AutorID))
	}
	if filter.Disponivel != nil {
		ds = ds.Where(goqu.I("l.disponivel").Eq(*filter.Disponivel))
	}

	orderCol := goqu.I("l." + col)
	if opts.Descending {
		ds = ds.Order(orderCol.Desc())
	} else {
		ds = ds.Order(orderCol.Asc())
	}

	ds = ds.Limit(uint(opts.Limit())).Offset(uint(opts.Offset()))

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build book list query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var livros []*domain.Livro
	for rows.Next() {
		livro := &domain.Livro{}
		err := rows.Scan(
			&livro.ID,
			&livro.Titulo,
			&livro.ISBN,
			&livro.AnoPublicacao,
			&livro.Disponivel,
			&livro.Autor.ID,
			&livro.Autor.Nome,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		livros = append(livros, livro)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}

	return livros, nil
}

// Ensure livroRepository implements repository.LivroRepository.
var _ repository.LivroRepository = (*livroRepository)(nil)
