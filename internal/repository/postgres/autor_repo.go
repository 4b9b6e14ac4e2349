package postgres

import (
	"context"
	"fmt"

	"github.com/acervo-dev/acervo/internal/domain"
	"github.com/acervo-dev/acervo/internal/repository"
)

// autorRepository implements repository.AutorRepository for PostgreSQL.
type autorRepository struct {
	db *DB
}

// NewAutorRepository creates a new PostgreSQL author repository.
func NewAutorRepository(db *DB) repository.AutorRepository {
	return &autorRepository{db: db}
}

// Create creates a new author.
func (r *autorRepository) Create(ctx context.Context, autor *domain.Autor) error {
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO autores (nome) VALUES ($1) RETURNING id`, autor.Nome).
		Scan(&autor.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrAutorJaExiste, autor.Nome)
		}
		return fmt.Errorf("failed to create author: %w", err)
	}
	return nil
}

// GetByID retrieves an author by ID.
func (r *autorRepository) GetByID(ctx context.Context, id int64) (*domain.Autor, error) {
	autor := &domain.Autor{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, nome FROM autores WHERE id = $1`, id).
		Scan(&autor.ID, &autor.Nome)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrAutorNaoEncontrado
		}
		return nil, fmt.Errorf("failed to get author by ID: %w", err)
	}
	return autor, nil
}

// ExistsByNome checks, case-insensitively, if an author with the name exists.
func (r *autorRepository) ExistsByNome(ctx context.Context, nome string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM autores WHERE LOWER(nome) = LOWER($1))`, nome).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check author existence: %w", err)
	}
	return exists, nil
}

// Update updates an existing author.
func (r *autorRepository) Update(ctx context.Context, autor *domain.Autor) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE autores SET nome = $1 WHERE id = $2`, autor.Nome, autor.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrAutorJaExiste, autor.Nome)
		}
		return fmt.Errorf("failed to update author: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAutorNaoEncontrado
	}
	return nil
}

// Delete deletes an author by ID.
func (r *autorRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM autores WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrRegistroReferenciado
		}
		return fmt.Errorf("failed to delete author: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAutorNaoEncontrado
	}
	return nil
}

// List returns all authors ordered by name ascending.
func (r *autorRepository) List(ctx context.Context) ([]*domain.Autor, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT id, nome FROM autores ORDER BY nome ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	defer rows.Close()

	var autores []*domain.Autor
	for rows.Next() {
		autor := &domain.Autor{}
		if err := rows.Scan(&autor.ID, &autor.Nome); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		autores = append(autores, autor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating authors: %w", err)
	}

	return autores, nil
}

// Ensure autorRepository implements repository.AutorRepository.
var _ repository.AutorRepository = (*autorRepository)(nil)
