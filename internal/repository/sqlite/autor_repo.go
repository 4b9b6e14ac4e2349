package sqlite

import (
	"context"
	"fmt"

	"github.com/acervo-dev/acervo/internal/domain"
	"github.com/acervo-dev/acervo/internal/repository"
)

// autorRepository implements repository.AutorRepository for SQLite.
type autorRepository struct {
	db *DB
}

// NewAutorRepository creates a new SQLite author repository.
func NewAutorRepository(db *DB) repository.AutorRepository {
	return &autorRepository{db: db}
}

// Create creates a new author.
func (r *autorRepository) Create(ctx context.Context, autor *domain.Autor) error {
	result, err := r.db.ExecContext(ctx, `INSERT INTO autores (nome) VALUES (?)`, autor.Nome)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrAutorJaExiste, autor.Nome)
		}
		return fmt.Errorf("failed to create author: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	autor.ID = id

	return nil
}

// GetByID retrieves an author by ID.
func (r *autorRepository) GetByID(ctx context.Context, id int64) (*domain.Autor, error) {
	autor := &domain.Autor{}
	err := r.db.QueryRowContext(ctx, `SELECT id, nome FROM autores WHERE id = ?`, id).
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
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM autores WHERE LOWER(nome) = LOWER(?)`, nome).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check author existence: %w", err)
	}
	return count > 0, nil
}

// Update updates an existing author.
func (r *autorRepository) Update(ctx context.Context, autor *domain.Autor) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE autores SET nome = ? WHERE id = ?`, autor.Nome, autor.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrAutorJaExiste, autor.Nome)
		}
		return fmt.Errorf("failed to update author: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrAutorNaoEncontrado
	}

	return nil
}

// Delete deletes an author by ID.
func (r *autorRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM autores WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrRegistroReferenciado
		}
		return fmt.Errorf("failed to delete author: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrAutorNaoEncontrado
	}

	return nil
}

// List returns all authors ordered by name ascending.
func (r *autorRepository) List(ctx context.Context) ([]*domain.Autor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, nome FROM autores ORDER BY nome ASC`)
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
