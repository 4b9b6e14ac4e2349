package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/acervo-dev/acervo/internal/domain"
	"github.com/acervo-dev/acervo/internal/repository"
)

func newLivroService() (*LivroService, *MockLivroRepository, *MockAutorRepository) {
	livros := NewMockLivroRepository()
	autores := NewMockAutorRepository()
	return NewLivroService(livros, autores, zerolog.Nop()), livros, autores
}

func TestLivroService_CreateLivro(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateLivroInput
		setup   func(*MockLivroRepository, *MockAutorRepository)
		wantErr error
	}{
		{
			name:  "success starts available",
			input: CreateLivroInput{Titulo: "Dom Casmurro", ISBN: "9788535910663", AnoPublicacao: 1899, AutorID: 1},
			setup: func(l *MockLivroRepository, a *MockAutorRepository) {
				a.autores[1] = &domain.Autor{ID: 1, Nome: "Machado De Assis"}
			},
		},
		{
			name:    "missing title",
			input:   CreateLivroInput{ISBN: "9788535910663", AnoPublicacao: 1899, AutorID: 1},
			wantErr: domain.ErrEntradaInvalida,
		},
		{
			name:    "missing author",
			input:   CreateLivroInput{Titulo: "Dom Casmurro", ISBN: "9788535910663", AnoPublicacao: 1899},
			wantErr: domain.ErrEntradaInvalida,
		},
		{
			name:    "author not found",
			input:   CreateLivroInput{Titulo: "Dom Casmurro", ISBN: "9788535910663", AnoPublicacao: 1899, AutorID: 9},
			wantErr: domain.ErrAutorNaoEncontrado,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, livros, autores := newLivroService()
			if tt.setup != nil {
				tt.setup(livros, autores)
			}

			output, err := svc.CreateLivro(context.Background(), tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !output.Livro.Disponivel {
				t.Error("expected new book to start available")
			}
			if output.Livro.Autor.Nome != "Machado De Assis" {
				t.Errorf("expected author to be joined, got %q", output.Livro.Autor.Nome)
			}
		})
	}
}

func TestLivroService_ListLivros(t *testing.T) {
	svc, livros, _ := newLivroService()
	disponivel := true
	for id := int64(1); id <= 12; id++ {
		livros.livros[id] = &domain.Livro{
			ID:         id,
			Titulo:     "Livro",
			ISBN:       "isbn",
			Disponivel: id%2 == 0,
			Autor:      domain.Autor{ID: 1, Nome: "Machado De Assis"},
		}
	}
	livros.nextID = 13

	t.Run("rejects unknown sort key", func(t *testing.T) {
		_, err := svc.ListLivros(context.Background(), ListLivrosInput{
			Opts: repository.ListOptions{Sort: "titulo; DROP TABLE livros"},
		})
		if !errors.Is(err, domain.ErrOrdenacaoInvalida) {
			t.Errorf("expected %v, got %v", domain.ErrOrdenacaoInvalida, err)
		}
	})

	t.Run("availability filter", func(t *testing.T) {
		output, err := svc.ListLivros(context.Background(), ListLivrosInput{
			Filter: repository.LivroFilter{Disponivel: &disponivel},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, l := range output.Livros {
			if !l.Disponivel {
				t.Errorf("expected only available books, got livro %d", l.ID)
			}
		}
	})

	t.Run("second page", func(t *testing.T) {
		output, err := svc.ListLivros(context.Background(), ListLivrosInput{
			Opts: repository.ListOptions{Page: 2, Size: 5, Sort: "id"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(output.Livros) != 5 {
			t.Fatalf("expected 5 books on page 2, got %d", len(output.Livros))
		}
		if output.Livros[0].ID != 6 {
			t.Errorf("expected page 2 to start at livro 6, got %d", output.Livros[0].ID)
		}
	})
}

func TestLivroService_UpdateLivro(t *testing.T) {
	svc, livros, autores := newLivroService()
	autores.autores[1] = &domain.Autor{ID: 1, Nome: "Machado De Assis"}
	livros.livros[1] = &domain.Livro{
		ID: 1, Titulo: "Dom Casmurro", ISBN: "9788535910663", AnoPublicacao: 1899,
		Disponivel: true, Autor: domain.Autor{ID: 1, Nome: "Machado De Assis"},
	}

	disponivel := true
	output, err := svc.UpdateLivro(context.Background(), UpdateLivroInput{
		ID: 1, Titulo: "Dom Casmurro (ed. revista)", ISBN: "9788535910663",
		AnoPublicacao: 1899, AutorID: 1, Disponivel: &disponivel,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Livro.Titulo != "Dom Casmurro (ed. revista)" {
		t.Errorf("expected updated title, got %q", output.Livro.Titulo)
	}

	_, err = svc.UpdateLivro(context.Background(), UpdateLivroInput{
		ID: 9, Titulo: "X", ISBN: "y", AnoPublicacao: 2000, AutorID: 1,
	})
	if !errors.Is(err, domain.ErrLivroNaoEncontrado) {
		t.Errorf("expected %v, got %v", domain.ErrLivroNaoEncontrado, err)
	}
}

func TestLivroService_UpdateLivroKeepsAvailability(t *testing.T) {
	svc, livros, autores := newLivroService()
	autores.autores[1] = &domain.Autor{ID: 1, Nome: "Machado De Assis"}
	livros.livros[1] = &domain.Livro{
		ID: 1, Titulo: "Dom Casmurro", ISBN: "9788535910663", AnoPublicacao: 1899,
		Disponivel: false, Autor: domain.Autor{ID: 1, Nome: "Machado De Assis"},
	}

	// A replace without the flag must not free a checked-out book.
	output, err := svc.UpdateLivro(context.Background(), UpdateLivroInput{
		ID: 1, Titulo: "Dom Casmurro", ISBN: "9788535910663",
		AnoPublicacao: 1899, AutorID: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Livro.Disponivel {
		t.Error("expected checked-out book to stay unavailable")
	}
	if livros.livros[1].Disponivel {
		t.Error("expected stored book to stay unavailable")
	}

	// An explicit flag still wins.
	disponivel := true
	output, err = svc.UpdateLivro(context.Background(), UpdateLivroInput{
		ID: 1, Titulo: "Dom Casmurro", ISBN: "9788535910663",
		AnoPublicacao: 1899, AutorID: 1, Disponivel: &disponivel,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !output.Livro.Disponivel {
		t.Error("expected explicit flag to be applied")
	}
}

func TestLivroService_DeleteLivro(t *testing.T) {
	t.Run("referenced by loans", func(t *testing.T) {
		svc, livros, _ := newLivroService()
		livros.livros[1] = &domain.Livro{ID: 1, Titulo: "Dom Casmurro"}
		livros.deleteErr = domain.ErrRegistroReferenciado

		err := svc.DeleteLivro(context.Background(), 1)
		if !errors.Is(err, domain.ErrRegistroReferenciado) {
			t.Errorf("expected %v, got %v", domain.ErrRegistroReferenciado, err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		svc, _, _ := newLivroService()

		err := svc.DeleteLivro(context.Background(), 9)
		if !errors.Is(err, domain.ErrLivroNaoEncontrado) {
			t.Errorf("expected %v, got %v", domain.ErrLivroNaoEncontrado, err)
		}
	})
}
