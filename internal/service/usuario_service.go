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

// UsuarioService handles user operations.
type UsuarioService struct {
	usuarioRepo repository.UsuarioRepository
	logger      zerolog.Logger
}

// NewUsuarioService creates a new UsuarioService.
func NewUsuarioService(
	usuarioRepo repository.UsuarioRepository,
	logger zerolog.Logger,
) *UsuarioService {
	return &UsuarioService{
		usuarioRepo: usuarioRepo,
		logger:      logger.With().Str("service", "usuario").Logger(),
	}
}

// =============================================================================
// Input/Output Structs
// =============================================================================

// CreateUsuarioInput contains the data needed to create a user.
type CreateUsuarioInput struct {
	Nome  string
	Email string
}

// CreateUsuarioOutput contains the result of creating a user.
type CreateUsuarioOutput struct {
	Usuario *domain.Usuario
}

// UpdateUsuarioInput contains the data needed to update a user.
type UpdateUsuarioInput struct {
	ID    int64
	Nome  string
	Email string
}

// UpdateUsuarioOutput contains the result of updating a user.
type UpdateUsuarioOutput struct {
	Usuario *domain.Usuario
}

// =============================================================================
// Service Methods
// =============================================================================

// CreateUsuario creates a new user. The email is validated and stored
// lowercased so uniqueness is case-insensitive.
func (s *UsuarioService) CreateUsuario(ctx context.Context, input CreateUsuarioInput) (*CreateUsuarioOutput, error) {
	nome := strings.TrimSpace(input.Nome)
	if nome == "" {
		return nil, domain.ErrEntradaInvalida
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !domain.ValidarEmail(email) {
		return nil, domain.ErrEmailInvalido
	}

	exists, err := s.usuarioRepo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("failed to check email existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, domain.ErrUsuarioJaExiste
	}

	usuario := &domain.Usuario{Nome: nome, Email: email}
	if err := s.usuarioRepo.Create(ctx, usuario); err != nil {
		if errors.Is(err, domain.ErrUsuarioJaExiste) {
			return nil, domain.ErrUsuarioJaExiste
		}
		s.logger.Error().Err(err).Str("email", email).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("usuario_id", usuario.ID).
		Str("email", email).
		Msg("user created")

	return &CreateUsuarioOutput{Usuario: usuario}, nil
}

// GetUsuario retrieves a user by ID.
func (s *UsuarioService) GetUsuario(ctx context.Context, id int64) (*domain.Usuario, error) {
	usuario, err := s.usuarioRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUsuarioNaoEncontrado) {
			return nil, domain.ErrUsuarioNaoEncontrado
		}
		s.logger.Error().Err(err).Int64("usuario_id", id).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return usuario, nil
}

// ListUsuarios returns all users.
func (s *UsuarioService) ListUsuarios(ctx context.Context) ([]*domain.Usuario, error) {
	usuarios, err := s.usuarioRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return usuarios, nil
}

// UpdateUsuario replaces a user's name and email.
func (s *UsuarioService) UpdateUsuario(ctx context.Context, input UpdateUsuarioInput) (*UpdateUsuarioOutput, error) {
	nome := strings.TrimSpace(input.Nome)
	if nome == "" {
		return nil, domain.ErrEntradaInvalida
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !domain.ValidarEmail(email) {
		return nil, domain.ErrEmailInvalido
	}

	usuario, err := s.usuarioRepo.GetByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUsuarioNaoEncontrado) {
			return nil, domain.ErrUsuarioNaoEncontrado
		}
		s.logger.Error().Err(err).Int64("usuario_id", input.ID).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	// Moving to another user's email is a conflict.
	if usuario.Email != email {
		exists, err := s.usuarioRepo.ExistsByEmail(ctx, email)
		if err != nil {
			s.logger.Error().Err(err).Str("email", email).Msg("failed to check email existence")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		if exists {
			return nil, domain.ErrUsuarioJaExiste
		}
	}

	usuario.Nome = nome
	usuario.Email = email
	if err := s.usuarioRepo.Update(ctx, usuario); err != nil {
		if errors.Is(err, domain.ErrUsuarioNaoEncontrado) || errors.Is(err, domain.ErrUsuarioJaExiste) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("usuario_id", input.ID).Msg("failed to update user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("usuario_id", usuario.ID).
		Str("email", email).
		Msg("user updated")

	return &UpdateUsuarioOutput{Usuario: usuario}, nil
}

// DeleteUsuario deletes a user. Users referenced by loans are kept and the
// call fails with ErrRegistroReferenciado.
func (s *UsuarioService) DeleteUsuario(ctx context.Context, id int64) error {
	if err := s.usuarioRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUsuarioNaoEncontrado) || errors.Is(err, domain.ErrRegistroReferenciado) {
			return err
		}
		s.logger.Error().Err(err).Int64("usuario_id", id).Msg("failed to delete user")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("usuario_id", id).Msg("user deleted")
	return nil
}
