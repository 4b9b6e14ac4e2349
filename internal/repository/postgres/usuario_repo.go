package postgres

import (
	"context"
	"fmt"

	"github.com/acervo-dev/acervo/internal/domain"
	"github.com/acervo-dev/acervo/internal/repository"
)

// usuarioRepository implements repository.UsuarioRepository for PostgreSQL.
type usuarioRepository struct {
	db *DB
}

// NewUsuarioRepository creates a new PostgreSQL user repository.
func NewUsuarioRepository(db *DB) repository.UsuarioRepository {
	return &usuarioRepository{db: db}
}

// Create creates a new user.
func (r *usuarioRepository) Create(ctx context.Context, usuario *domain.Usuario) error {
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO usuarios (nome, email) VALUES ($1, $2) RETURNING id`,
		usuario.Nome, usuario.Email).
		Scan(&usuario.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrUsuarioJaExiste, usuario.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *usuarioRepository) GetByID(ctx context.Context, id int64) (*domain.Usuario, error) {
	usuario := &domain.Usuario{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, nome, email FROM usuarios WHERE id = $1`, id).
		Scan(&usuario.ID, &usuario.Nome, &usuario.Email)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUsuarioNaoEncontrado
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return usuario, nil
}

// ExistsByEmail checks, case-insensitively, if a user with the email exists.
func (r *usuarioRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM usuarios WHERE LOWER(email) = LOWER($1))`, email).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// Update updates an existing user.
func (r *usuarioRepository) Update(ctx context.Context, usuario *domain.Usuario) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE usuarios SET nome = $1, email = $2 WHERE id = $3`,
		usuario.Nome, usuario.Email, usuario.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrUsuarioJaExiste, usuario.Email)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUsuarioNaoEncontrado
	}
	return nil
}

// Delete deletes a user by ID.
func (r *usuarioRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM usuarios WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrRegistroReferenciado
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUsuarioNaoEncontrado
	}
	return nil
}

// List returns all users ordered by name ascending.
func (r *usuarioRepository) List(ctx context.Context) ([]*domain.Usuario, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, nome, email FROM usuarios ORDER BY nome ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var usuarios []*domain.Usuario
	for rows.Next() {
		usuario := &domain.Usuario{}
		if err := rows.Scan(&usuario.ID, &usuario.Nome, &usuario.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		usuarios = append(usuarios, usuario)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return usuarios, nil
}

// Ensure usuarioRepository implements repository.UsuarioRepository.
var _ repository.UsuarioRepository = (*usuarioRepository)(nil)
