package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/acervo-dev/acervo/internal/domain"
	"github.com/acervo-dev/acervo/internal/repository"
)

// LivroService handles book operations.
type LivroService struct {
	livroRepo repository.LivroRepository
	autorRepo repository.AutorRepository
	logger    zerolog.Logger
}

// NewLivroService creates a new LivroService.
func NewLivroService(
	livroRepo repository.LivroRepository,
	autorRepo repository.AutorRepository,
	logger zerolog.Logger,
) *LivroService {
	return &LivroService{
		livroRepo: livroRepo,
		autorRepo: autorRepo,
		logger:    logger.With().Str("service", "livro").Logger(),
	}
}

// =============================================================================
// Input/Output Structs
// =============================================================================

// CreateLivroInput contains the data needed to create a book.
type CreateLivroInput struct {
	Titulo        string
	ISBN          string
	AnoPublicacao int
	AutorID       int64
}

// CreateLivroOutput contains the result of creating a book.
type CreateLivroOutput struct {
	Livro *domain.Livro
}

// UpdateLivroInput contains the data needed to replace a book.
// A nil Disponivel keeps the stored availability, so a replace cannot
// accidentally free a checked-out book.
type UpdateLivroInput struct {
	ID            int64
	Titulo        string
	ISBN          string
	AnoPublicacao int
	AutorID       int64
	Disponivel    *bool
}

// UpdateLivroOutput contains the result of replacing a book.
type UpdateLivroOutput struct {
	Livro *domain.Livro
}

// ListLivrosInput contains the filters, paging and sort for a book listing.
type ListLivrosInput struct {
	Filter repository.LivroFilter
	Opts   repository.ListOptions
}

// ListLivrosOutput contains the result of listing books.
type ListLivrosOutput struct {
	Livros []*domain.Livro
}

// =============================================================================
// Service Methods
// =============================================================================

// CreateLivro creates a new book. New books start available.
func (s *LivroService) CreateLivro(ctx context.Context, input CreateLivroInput) (*CreateLivroOutput, error) {
	titulo := strings.TrimSpace(input.Titulo)
	isbn := strings.TrimSpace(input.ISBN)
	if titulo == "" || isbn == "" || input.AnoPublicacao == 0 || input.AutorID == 0 {
		return nil, domain.ErrEntradaInvalida
	}

	autor, err := s.autorRepo.GetByID(ctx, input.AutorID)
	if err != nil {
		if errors.Is(err, domain.ErrAutorNaoEncontrado) {
			return nil, domain.ErrAutorNaoEncontrado
		}
		s.logger.Error().Err(err).Int64("autor_id", input.AutorID).Msg("failed to get author")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	livro := &domain.Livro{
		Titulo:        titulo,
		ISBN:          isbn,
		AnoPublicacao: input.AnoPublicacao,
		Disponivel:    true,
		Autor:         *autor,
	}

	if err := s.livroRepo.Create(ctx, livro); err != nil {
		if errors.Is(err, domain.ErrAutorNaoEncontrado) {
			return nil, domain.ErrAutorNaoEncontrado
		}
		s.logger.Error().Err(err).Str("titulo", titulo).Msg("failed to create book")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("livro_id", livro.ID).
		Str("titulo", titulo).
		Int64("autor_id", autor.ID).
		Msg("book created")

	return &CreateLivroOutput{Livro: livro}, nil
}

// GetLivro retrieves a book by ID.
func (s *LivroService) GetLivro(ctx context.Context, id int64) (*domain.Livro, error) {
	livro, err := s.livroRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrLivroNaoEncontrado) {
			return nil, domain.ErrLivroNaoEncontrado
		}
		s.logger.Error().Err(err).Int64("livro_id", id).Msg("failed to get book")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return livro, nil
}

// ListLivros returns books matching the filter. The sort key is validated
// against the allow-list before reaching the store.
func (s *LivroService) ListLivros(ctx context.Context, input ListLivrosInput) (*ListLivrosOutput, error) {
	if _, ok := repository.LivroSortColumn(input.Opts.Sort); !ok {
		return nil, domain.ErrOrdenacaoInvalida
	}

	livros, err := s.livroRepo.List(ctx, input.Filter, input.Opts)
	if err != nil {
		if errors.Is(err, domain.ErrOrdenacaoInvalida) {
			return nil, domain.ErrOrdenacaoInvalida
		}
		s.logger.Error().Err(err).Msg("failed to list books")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &ListLivrosOutput{Livros: livros}, nil
}

// UpdateLivro replaces a book's fields. The availability flag is replaced
// only when the input carries one; otherwise the stored flag survives, since
// availability is owned by the loan operations.
func (s *LivroService) UpdateLivro(ctx context.Context, input UpdateLivroInput) (*UpdateLivroOutput, error) {
	titulo := strings.TrimSpace(input.Titulo)
	isbn := strings.TrimSpace(input.ISBN)
	if titulo == "" || isbn == "" || input.AnoPublicacao == 0 || input.AutorID == 0 {
		return nil, domain.ErrEntradaInvalida
	}

	existente, err := s.livroRepo.GetByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, domain.ErrLivroNaoEncontrado) {
			return nil, domain.ErrLivroNaoEncontrado
		}
		s.logger.Error().Err(err).Int64("livro_id", input.ID).Msg("failed to get book")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	disponivel := existente.Disponivel
	if input.Disponivel != nil {
		disponivel = *input.Disponivel
	}

	autor, err := s.autorRepo.GetByID(ctx, input.AutorID)
	if err != nil {
		if errors.Is(err, domain.ErrAutorNaoEncontrado) {
			return nil, domain.ErrAutorNaoEncontrado
		}
		s.logger.Error().Err(err).Int64("autor_id", input.AutorID).Msg("failed to get author")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	livro := &domain.Livro{
		ID:            input.ID,
		Titulo:        titulo,
		ISBN:          isbn,
		AnoPublicacao: input.AnoPublicacao,
		Disponivel:    disponivel,
		Autor:         *autor,
	}

	if err := s.livroRepo.Update(ctx, livro); err != nil {
		if errors.Is(err, domain.ErrLivroNaoEncontrado) || errors.Is(err, domain.ErrAutorNaoEncontrado) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("livro_id", input.ID).Msg("failed to update book")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("livro_id", livro.ID).
		Str("titulo", titulo).
		Msg("book updated")

	return &UpdateLivroOutput{Livro: livro}, nil
}

// DeleteLivro deletes a book. Books referenced by loans are kept and the
// call fails with ErrRegistroReferenciado.
func (s *LivroService) DeleteLivro(ctx context.Context, id int64) error {
	if err := s.livroRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrLivroNaoEncontrado) || errors.Is(err, domain.ErrRegistroReferenciado) {
			return err
		}
		s.logger.Error().Err(err).Int64("livro_id", id).Msg("failed to delete book")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("livro_id", id).Msg("book deleted")
	return nil
}
