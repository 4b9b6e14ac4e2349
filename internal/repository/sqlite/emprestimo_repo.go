package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/acervo-dev/acervo/internal/domain"
	"github.com/acervo-dev/acervo/internal/repository"
)

// emprestimoRepository implements repository.EmprestimoRepository for SQLite.
//
// Abrir and Devolver run inside a transaction and flip book availability with
// conditional updates, so concurrent attempts on the same book cannot both
// succeed even across processes sharing the database file.
type emprestimoRepository struct {
	db *DB
}

// NewEmprestimoRepository creates a new SQLite loan repository.
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
		query += ` WHERE e.usuario_id = ?`
		args = append(args, filter.UsuarioID)
	}

	rows, err := r.db.QueryContext(ctx, query+` ORDER BY e.data_emprestimo DESC`, args...)
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
	rows, err := r.db.QueryContext(ctx, emprestimoJoinQuery+` WHERE e.id = ?`, id)
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
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM emprestimos WHERE usuario_id = ? AND devolvido = 0`,
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
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM emprestimos
		 WHERE usuario_id = ? AND devolvido = 0 AND data_emprestimo < ?`,
		usuarioID, formatTime(corte)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count overdue loans: %w", err)
	}
	return count, nil
}

// Abrir atomically inserts the loan and marks the book unavailable.
func (r *emprestimoRepository) Abrir(ctx context.Context, emprestimo *domain.Emprestimo) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		// Conditional flip: zero affected rows means the book is either
		// missing or already checked out.
		result, err := tx.ExecContext(ctx,
			`UPDATE livros SET disponivel = 0 WHERE id = ? AND disponivel = 1`,
			emprestimo.LivroID)
		if err != nil {
			return fmt.Errorf("failed to mark book unavailable: %w", err)
		}

		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			var count int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM livros WHERE id = ?`,
				emprestimo.LivroID).Scan(&count); err != nil {
				return fmt.Errorf("failed to check book existence: %w", err)
			}
			if count == 0 {
				return domain.ErrLivroNaoEncontrado
			}
			return domain.ErrLivroIndisponivel
		}

		insert, err := tx.ExecContext(ctx,
			`INSERT INTO emprestimos (usuario_id, livro_id, data_emprestimo, data_prevista, devolvido)
			 VALUES (?, ?, ?, ?, 0)`,
			emprestimo.UsuarioID,
			emprestimo.LivroID,
			formatTime(emprestimo.DataEmprestimo),
			formatTime(emprestimo.DataPrevista),
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrUsuarioNaoEncontrado
			}
			return fmt.Errorf("failed to insert loan: %w", err)
		}

		id, err := insert.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %w", err)
		}
		emprestimo.ID = id
		emprestimo.Devolvido = false

		return nil
	})
}

// Devolver atomically closes the loan and marks the book available again.
func (r *emprestimoRepository) Devolver(ctx context.Context, id int64, quando time.Time) (*domain.Emprestimo, error) {
	var emprestimo *domain.Emprestimo

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		// Conditional close: zero affected rows means the loan is either
		// missing or already closed.
		result, err := tx.ExecContext(ctx,
			`UPDATE emprestimos SET devolvido = 1, data_devolucao = ?
			 WHERE id = ? AND devolvido = 0`,
			formatTime(quando), id)
		if err != nil {
			return fmt.Errorf("failed to close loan: %w", err)
		}

		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			var devolvido int
			err := tx.QueryRowContext(ctx,
				`SELECT devolvido FROM emprestimos WHERE id = ?`, id).Scan(&devolvido)
			if isNoRows(err) {
				return domain.ErrEmprestimoNaoEncontrado
			}
			if err != nil {
				return fmt.Errorf("failed to check loan state: %w", err)
			}
			return domain.ErrEmprestimoJaDevolvido
		}

		e := &domain.Emprestimo{}
		var dataEmprestimo, dataPrevista string
		var dataDevolucao sql.NullString
		var devolvido int
		err = tx.QueryRowContext(ctx,
			`SELECT id, usuario_id, livro_id, data_emprestimo, data_prevista, data_devolucao, devolvido
			 FROM emprestimos WHERE id = ?`, id).
			Scan(&e.ID, &e.UsuarioID, &e.LivroID, &dataEmprestimo, &dataPrevista, &dataDevolucao, &devolvido)
		if err != nil {
			return fmt.Errorf("failed to reload loan: %w", err)
		}
		e.DataEmprestimo = parseTime(dataEmprestimo)
		e.DataPrevista = parseTime(dataPrevista)
		if dataDevolucao.Valid {
			t := parseTime(dataDevolucao.String)
			e.DataDevolucao = &t
		}
		e.Devolvido = devolvido != 0

		if _, err := tx.ExecContext(ctx,
			`UPDATE livros SET disponivel = 1 WHERE id = ?`, e.LivroID); err != nil {
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
func scanEmprestimoDetalhado(rows *sql.Rows) (*domain.EmprestimoDetalhado, error) {
	e := &domain.EmprestimoDetalhado{}
	var dataEmprestimo, dataPrevista string
	var dataDevolucao sql.NullString
	var devolvido int

	err := rows.Scan(
		&e.ID,
		&e.UsuarioID,
		&e.LivroID,
		&dataEmprestimo,
		&dataPrevista,
		&dataDevolucao,
		&devolvido,
		&e.UsuarioNome,
		&e.LivroTitulo,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan loan: %w", err)
	}

	e.DataEmprestimo = parseTime(dataEmprestimo)
	e.DataPrevista = parseTime(dataPrevista)
	if dataDevolucao.Valid {
		t := parseTime(dataDevolucao.String)
		e.DataDevolucao = &t
	}
	e.Devolvido = devolvido != 0

	return e, nil
}

// formatTime stores timestamps as RFC3339 UTC so that lexicographic
// comparison in SQL matches chronological order.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// Ensure emprestimoRepository implements repository.EmprestimoRepository.
var _ repository.EmprestimoRepository = (*emprestimoRepository)(nil)
