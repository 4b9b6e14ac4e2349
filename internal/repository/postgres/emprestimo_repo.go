package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/acervo-dev/acervo/internal/domain"
	"github.com/acervo-dev/acervo/internal/repository"
)

// emprestimoRepository implements repository.EmprestimoRepository for PostgreSQL.
//
// Abrir and Devolver run inside a transaction and flip book availability with
// conditional updates, so concurrent attempts on the same book cannot both
// succeed even across server instances.
type emprestimoRepository struct {
	db *DB
}

// NewEmprestimoRepository creates a new PostgreSQL loan repository.
func NewEmprestimoRepository(db *DB) repository.EmprestimoRepository {
	return &emprestimoRepository{db: db}
}

const emprestimoJoinQuery = `
	SELECT e.id, e.usuario_id, e.livro_id, e.data_emprestimo, e.data_prevista,
	       e.data_devolucao, e.devolvido, u.nome, l.titulo
	FROM emprestimos e
	JOIN usuarios u ON e.usuario_id = u.id
	JOIN livros l ON e.livro_id = l.id
`

// List returns loans matching the filter, newest first.
func (r *emprestimoRepository) List(ctx context.Context, filter repository.EmprestimoFilter) ([]*domain.EmprestimoDetalhado, error) {
	query := emprestimoJoinQuery
	var args []interface{}
	if filter.UsuarioID > 0 {
		query += ` WHERE e.usuario_id = $1`
		args = append(args, filter.UsuarioID)
	}

	rows, err := r.db.Pool.Query(ctx, query+` ORDER BY e.data_emprestimo DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var emprestimos []*domain.EmprestimoDetalhado
	for rows.Next() {
		e, err := scanEmprestimoDetalhado(rows)
		if err != nil {
			return nil, err
		}
		emprestimos = append(emprestimos, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating loans: %w", err)
	}

	return emprestimos, nil
}

// GetByID retrieves a loan joined with user name and book title.
func (r *emprestimoRepository) GetByID(ctx context.Context, id int64) (*domain.EmprestimoDetalhado, error) {
	rows, err := r.db.Pool.Query(ctx, emprestimoJoinQuery+` WHERE e.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan by ID: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get loan by ID: %w", err)
		}
		return nil, domain.ErrEmprestimoNaoEncontrado
	}

	return scanEmprestimoDetalhado(rows)
}

// CountAbertos returns the number of open loans held by a user.
func (r *emprestimoRepository) CountAbertos(ctx context.Context, usuarioID int64) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM emprestimos WHERE usuario_id = $1 AND devolvido = FALSE`,
		usuarioID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count open loans: %w", err)
	}
	return count, nil
}

// CountAtrasados returns the number of open loans held by a user whose loan
// date is before the cutoff.
func (r *emprestimoRepository) CountAtrasados(ctx context.Context, usuarioID int64, corte time.Time) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM emprestimos
		 WHERE usuario_id = $1 AND devolvido = FALSE AND data_emprestimo < $2`,
		usuarioID, corte).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count overdue loans: %w", err)
	}
	return count, nil
}

// Abrir atomically inserts the loan and marks the book unavailable.
func (r *emprestimoRepository) Abrir(ctx context.Context, emprestimo *domain.Emprestimo) error {
	return r.db.WithTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		// Conditional flip: zero affected rows means the book is either
		// missing or already checked out.
		tag, err := tx.Exec(ctx,
			`UPDATE livros SET disponivel = FALSE WHERE id = $1 AND disponivel = TRUE`,
			emprestimo.LivroID)
		if err != nil {
			return fmt.Errorf("failed to mark book unavailable: %w", err)
		}

		if tag.RowsAffected() == 0 {
			var count int
			if err := tx.QueryRow(ctx,
				`SELECT COUNT(*) FROM livros WHERE id = $1`,
				emprestimo.LivroID).Scan(&count); err != nil {
				return fmt.Errorf("failed to check book existence: %w", err)
			}
			if count == 0 {
				return domain.ErrLivroNaoEncontrado
			}
			return domain.ErrLivroIndisponivel
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO emprestimos (usuario_id, livro_id, data_emprestimo, data_prevista, devolvido)
			 VALUES ($1, $2, $3, $4, FALSE) RETURNING id`,
			emprestimo.UsuarioID,
			emprestimo.LivroID,
			emprestimo.DataEmprestimo,
			emprestimo.DataPrevista,
		).Scan(&emprestimo.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrUsuarioNaoEncontrado
			}
			return fmt.Errorf("failed to insert loan: %w", err)
		}
		emprestimo.Devolvido = false

		return nil
	})
}

// Devolver atomically closes the loan and marks the book available again.
func (r *emprestimoRepository) Devolver(ctx context.Context, id int64, quando time.Time) (*domain.Emprestimo, error) {
	var emprestimo *domain.Emprestimo

	err := r.db.WithTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		// Conditional close: zero affected rows means the loan is either
		// missing or already closed.
		tag, err := tx.Exec(ctx,
			`UPDATE emprestimos SET devolvido = TRUE, data_devolucao = $1
			 WHERE id = $2 AND devolvido = FALSE`,
			quando, id)
		if err != nil {
			return fmt.Errorf("failed to close loan: %w", err)
		}

		if tag.RowsAffected() == 0 {
			var devolvido bool
			err := tx.QueryRow(ctx,
				`SELECT devolvido FROM emprestimos WHERE id = $1`, id).Scan(&devolvido)
			if isNoRows(err) {
				return domain.ErrEmprestimoNaoEncontrado
			}
			if err != nil {
				return fmt.Errorf("failed to check loan state: %w", err)
			}
			return domain.ErrEmprestimoJaDevolvido
		}

		e := &domain.Emprestimo{}
		err = tx.QueryRow(ctx,
			`SELECT id, usuario_id, livro_id, data_emprestimo, data_prevista, data_devolucao, devolvido
			 FROM emprestimos WHERE id = $1`, id).
			Scan(&e.ID, &e.UsuarioID, &e.LivroID, &e.DataEmprestimo, &e.DataPrevista, &e.DataDevolucao, &e.Devolvido)
		if err != nil {
			return fmt.Errorf("failed to reload loan: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE livros SET disponivel = TRUE WHERE id = $1`, e.LivroID); err != nil {
			return fmt.Errorf("failed to mark book available: %w", err)
		}

		emprestimo = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	return emprestimo, nil
}

// scanEmprestimoDetalhado scans one row of the loan join query.
func scanEmprestimoDetalhado(rows pgx.Rows) (*domain.EmprestimoDetalhado, error) {
	e := &domain.EmprestimoDetalhado{}

	err := rows.Scan(
		&e.ID,
		&e.UsuarioID,
		&e.LivroID,
		&e.DataEmprestimo,
		&e.DataPrevista,
		&e.DataDevolucao,
		&e.Devolvido,
		&e.UsuarioNome,
		&e.LivroTitulo,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan loan: %w", err)
	}

	return e, nil
}

// Ensure emprestimoRepository implements repository.EmprestimoRepository.
var _ repository.EmprestimoRepository = (*emprestimoRepository)(nil)
