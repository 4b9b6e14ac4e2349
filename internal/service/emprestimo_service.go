package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/acervo-dev/acervo/internal/domain"
	"github.com/acervo-dev/acervo/internal/lock"
	"github.com/acervo-dev/acervo/internal/repository"
)

// Default lending rules.
const (
	// DefaultLimiteEmprestimos is the maximum number of open loans per user.
	DefaultLimiteEmprestimos = 3

	// DefaultPrazoDevolucao is how long a user may keep a book. A loan older
	// than this that is still open blocks the user from new loans.
	DefaultPrazoDevolucao = 15 * 24 * time.Hour
)

// Lock tuning for loan operations. The TTL only matters if a process dies
// while holding the lock; normal operation releases well before it.
const (
	lockTTL        = 10 * time.Second
	lockMaxRetries = 3
	lockRetryDelay = 50 * time.Millisecond
)

// EmprestimoService enforces the lending rules.
//
// Opening a loan checks, in order: input shape, user existence, overdue
// block, open-loan limit, then hands off to the store which atomically
// verifies book existence and availability while inserting the row. Closing
// a loan is the only state transition and happens exactly once per loan.
type EmprestimoService struct {
	emprestimoRepo repository.EmprestimoRepository
	usuarioRepo    repository.UsuarioRepository
	locker         lock.Locker
	logger         zerolog.Logger

	limite int
	prazo  time.Duration
	now    func() time.Time
}

// NewEmprestimoService creates a new EmprestimoService.
// Zero values for limite and prazo select the defaults.
func NewEmprestimoService(
	emprestimoRepo repository.EmprestimoRepository,
	usuarioRepo repository.UsuarioRepository,
	locker lock.Locker,
	logger zerolog.Logger,
	limite int,
	prazo time.Duration,
) *EmprestimoService {
	if limite <= 0 {
		limite = DefaultLimiteEmprestimos
	}
	if prazo <= 0 {
		prazo = DefaultPrazoDevolucao
	}
	return &EmprestimoService{
		emprestimoRepo: emprestimoRepo,
		usuarioRepo:    usuarioRepo,
		locker:         locker,
		logger:         logger.With().Str("service", "emprestimo").Logger(),
		limite:         limite,
		prazo:          prazo,
		now:            time.Now,
	}
}

// =============================================================================
// Input/Output Structs
// =============================================================================

// AbrirEmprestimoInput contains the data needed to open a loan.
type AbrirEmprestimoInput struct {
	UsuarioID int64
	LivroID   int64
}

// AbrirEmprestimoOutput contains the result of opening a loan.
type AbrirEmprestimoOutput struct {
	Emprestimo *domain.Emprestimo
}

// DevolverEmprestimoOutput contains the result of closing a loan.
type DevolverEmprestimoOutput struct {
	Emprestimo *domain.Emprestimo
}

// =============================================================================
// Service Methods
// =============================================================================

// ListEmprestimos returns loans matching the filter, joined with user name
// and book title.
func (s *EmprestimoService) ListEmprestimos(ctx context.Context, filter repository.EmprestimoFilter) ([]*domain.EmprestimoDetalhado, error) {
	emprestimos, err := s.emprestimoRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list loans")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return emprestimos, nil
}

// GetEmprestimo retrieves a loan by ID.
func (s *EmprestimoService) GetEmprestimo(ctx context.Context, id int64) (*domain.EmprestimoDetalhado, error) {
	emprestimo, err := s.emprestimoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrEmprestimoNaoEncontrado) {
			return nil, domain.ErrEmprestimoNaoEncontrado
		}
		s.logger.Error().Err(err).Int64("emprestimo_id", id).Msg("failed to get loan")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return emprestimo, nil
}

// AbrirEmprestimo opens a loan after checking every lending rule.
//
// The per-user lock serializes the overdue and limit checks against the
// insert; the book availability flip is already atomic at the store level,
// so concurrent opens on the same book cannot both succeed regardless.
func (s *EmprestimoService) AbrirEmprestimo(ctx context.Context, input AbrirEmprestimoInput) (*AbrirEmprestimoOutput, error) {
	if input.UsuarioID <= 0 || input.LivroID <= 0 {
		return nil, domain.ErrEntradaInvalida
	}

	if _, err := s.usuarioRepo.GetByID(ctx, input.UsuarioID); err != nil {
		if errors.Is(err, domain.ErrUsuarioNaoEncontrado) {
			return nil, domain.ErrUsuarioNaoEncontrado
		}
		s.logger.Error().Err(err).Int64("usuario_id", input.UsuarioID).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	userKey := lock.KeyUsuario(input.UsuarioID)
	acquired, err := s.locker.AcquireWithRetry(ctx, userKey, lockTTL, lockMaxRetries, lockRetryDelay)
	if err != nil {
		s.logger.Error().Err(err).Str("key", userKey).Msg("failed to acquire user lock")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w: concurrent loan operation for user %d", ErrInternalError, input.UsuarioID)
	}
	defer func() {
		if _, err := s.locker.Release(ctx, userKey); err != nil {
			s.logger.Warn().Err(err).Str("key", userKey).Msg("failed to release user lock")
		}
	}()

	now := s.now()

	corte := now.Add(-s.prazo)
	atrasados, err := s.emprestimoRepo.CountAtrasados(ctx, input.UsuarioID, corte)
	if err != nil {
		s.logger.Error().Err(err).Int64("usuario_id", input.UsuarioID).Msg("failed to count overdue loans")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if atrasados > 0 {
		return nil, domain.ErrUsuarioComAtraso
	}

	abertos, err := s.emprestimoRepo.CountAbertos(ctx, input.UsuarioID)
	if err != nil {
		s.logger.Error().Err(err).Int64("usuario_id", input.UsuarioID).Msg("failed to count open loans")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if abertos >= int64(s.limite) {
		return nil, domain.ErrLimiteEmprestimos
	}

	emprestimo := &domain.Emprestimo{
		UsuarioID:      input.UsuarioID,
		LivroID:        input.LivroID,
		DataEmprestimo: now,
		DataPrevista:   now.Add(s.prazo),
		Devolvido:      false,
	}

	if err := s.emprestimoRepo.Abrir(ctx, emprestimo); err != nil {
		switch {
		case errors.Is(err, domain.ErrLivroNaoEncontrado),
			errors.Is(err, domain.ErrLivroIndisponivel),
			errors.Is(err, domain.ErrUsuarioNaoEncontrado):
			return nil, err
		}
		s.logger.Error().Err(err).
			Int64("usuario_id", input.UsuarioID).
			Int64("livro_id", input.LivroID).
			Msg("failed to open loan")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("emprestimo_id", emprestimo.ID).
		Int64("usuario_id", input.UsuarioID).
		Int64("livro_id", input.LivroID).
		Time("data_prevista", emprestimo.DataPrevista).
		Msg("loan opened")

	return &AbrirEmprestimoOutput{Emprestimo: emprestimo}, nil
}

// DevolverEmprestimo closes a loan, stamps the return date and frees the book.
// Closing an already-closed loan fails with ErrEmprestimoJaDevolvido.
func (s *EmprestimoService) DevolverEmprestimo(ctx context.Context, id int64) (*DevolverEmprestimoOutput, error) {
	if id <= 0 {
		return nil, domain.ErrEntradaInvalida
	}

	emprestimo, err := s.emprestimoRepo.Devolver(ctx, id, s.now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmprestimoNaoEncontrado),
			errors.Is(err, domain.ErrEmprestimoJaDevolvido):
			return nil, err
		}
		s.logger.Error().Err(err).Int64("emprestimo_id", id).Msg("failed to close loan")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("emprestimo_id", emprestimo.ID).
		Int64("livro_id", emprestimo.LivroID).
		Msg("loan closed")

	return &DevolverEmprestimoOutput{Emprestimo: emprestimo}, nil
}
