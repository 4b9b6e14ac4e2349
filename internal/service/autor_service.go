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

// AutorService handles author operations.
type AutorService struct {
	autorRepo repository.AutorRepository
	logger    zerolog.Logger
}

// NewAutorService creates a new AutorService.
func NewAutorService(
	autorRepo repository.AutorRepository,
	logger zerolog.Logger,
) *AutorService {
	return &AutorService{
		autorRepo: autorRepo,
		logger:    logger.With().Str("service", "autor").Logger(),
	}
}

// =============================================================================
// Input/Output Structs
// =============================================================================

// CreateAutorInput contains the data needed to create an author.
type CreateAutorInput struct {
	Nome string
}

// CreateAutorOutput contains the result of creating an author.
type CreateAutorOutput struct {
	Autor *domain.Autor
}

// UpdateAutorInput contains the data needed to update an author.
type UpdateAutorInput struct {
	ID   int64
	Nome string
}

// UpdateAutorOutput contains the result of updating an author.
type UpdateAutorOutput struct {
	Autor *domain.Autor
}

// =============================================================================
// Service Methods
// =============================================================================

// CreateAutor creates a new author with a normalized name.
func (s *AutorService) CreateAutor(ctx context.Context, input CreateAutorInput) (*CreateAutorOutput, error) {
	nome := domain.NormalizarNome(input.Nome)
	if nome == "" {
		return nil, domain.ErrEntradaInvalida
	}

	exists, err := s.autorRepo.ExistsByNome(ctx, nome)
	if err != nil {
		s.logger.Error().Err(err).Str("nome", nome).Msg("failed to check author existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, domain.ErrAutorJaExiste
	}

	autor := &domain.Autor{Nome: nome}
	if err := s.autorRepo.Create(ctx, autor); err != nil {
		if errors.Is(err, domain.ErrAutorJaExiste) {
			return nil, domain.ErrAutorJaExiste
		}
		s.logger.Error().Err(err).Str("nome", nome).Msg("failed to create author")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("autor_id", autor.ID).
		Str("nome", nome).
		Msg("author created")

	return &CreateAutorOutput{Autor: autor}, nil
}

// GetAutor retrieves an author by ID.
func (s *AutorService) GetAutor(ctx context.Context, id int64) (*domain.Autor, error) {
	autor, err := s.autorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAutorNaoEncontrado) {
			return nil, domain.ErrAutorNaoEncontrado
		}
		s.logger.Error().Err(err).Int64("autor_id", id).Msg("failed to get author")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return autor, nil
}

// ListAutores returns all authors.
func (s *AutorService) ListAutores(ctx context.Context) ([]*domain.Autor, error) {
	autores, err := s.autorRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list authors")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return autores, nil
}

// UpdateAutor renames an existing author.
func (s *AutorService) UpdateAutor(ctx context.Context, input UpdateAutorInput) (*UpdateAutorOutput, error) {
	nome := domain.NormalizarNome(input.Nome)
	if nome == "" {
		return nil, domain.ErrEntradaInvalida
	}

	autor, err := s.autorRepo.GetByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, domain.ErrAutorNaoEncontrado) {
			return nil, domain.ErrAutorNaoEncontrado
		}
		s.logger.Error().Err(err).Int64("autor_id", input.ID).Msg("failed to get author")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	// Renaming to another author's name is a conflict; renaming to a
	// different casing of the same name is allowed.
	if !strings.EqualFold(autor.Nome, nome) {
		exists, err := s.autorRepo.ExistsByNome(ctx, nome)
		if err != nil {
			s.logger.Error().Err(err).Str("nome", nome).Msg("failed to check author existence")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		if exists {
			return nil, domain.ErrAutorJaExiste
		}
	}

	autor.Nome = nome
	if err := s.autorRepo.Update(ctx, autor); err != nil {
		if errors.Is(err, domain.ErrAutorNaoEncontrado) || errors.Is(err, domain.ErrAutorJaExiste) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("autor_id", input.ID).Msg("failed to update author")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("autor_id", autor.ID).
		Str("nome", nome).
		Msg("author updated")

	return &UpdateAutorOutput{Autor: autor}, nil
}

// DeleteAutor deletes an author. Authors referenced by books are kept and the
// call fails with ErrRegistroReferenciado.
func (s *AutorService) DeleteAutor(ctx context.Context, id int64) error {
	if err := s.autorRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrAutorNaoEncontrado) || errors.Is(err, domain.ErrRegistroReferenciado) {
			return err
		}
		s.logger.Error().Err(err).Int64("autor_id", id).Msg("failed to delete author")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("autor_id", id).Msg("author deleted")
	return nil
}
