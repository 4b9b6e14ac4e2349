package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/acervo-dev/acervo/internal/domain"
	"github.com/acervo-dev/acervo/internal/lock"
	"github.com/acervo-dev/acervo/internal/repository"
)

// fixedNow is the reference instant for every loan test.
var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type emprestimoFixture struct {
	svc         *EmprestimoService
	usuarios    *MockUsuarioRepository
	livros      *MockLivroRepository
	emprestimos *MockEmprestimoRepository
}

func newEmprestimoFixture(t *testing.T) *emprestimoFixture {
	t.Helper()

	usuarios := NewMockUsuarioRepository()
	livros := NewMockLivroRepository()
	emprestimos := NewMockEmprestimoRepository(livros)

	locker := lock.NewMemoryLocker()
	t.Cleanup(locker.Close)

	svc := NewEmprestimoService(
		emprestimos,
		usuarios,
		locker,
		zerolog.Nop(),
		0, // defaults
		0,
	)
	svc.now = func() time.Time { return fixedNow }

	return &emprestimoFixture{
		svc:         svc,
		usuarios:    usuarios,
		livros:      livros,
		emprestimos: emprestimos,
	}
}

func (f *emprestimoFixture) addUsuario(id int64) {
	f.usuarios.usuarios[id] = &domain.Usuario{ID: id, Nome: "Maria Silva", Email: "maria@exemplo.com"}
}

func (f *emprestimoFixture) addLivro(id int64, disponivel bool) {
	f.livros.livros[id] = &domain.Livro{
		ID:         id,
		Titulo:     "Dom Casmurro",
		ISBN:       "9788535910663",
		Disponivel: disponivel,
		Autor:      domain.Autor{ID: 1, Nome: "Machado De Assis"},
	}
}

func (f *emprestimoFixture) addEmprestimo(usuarioID, livroID int64, abertoHa time.Duration) {
	id := f.emprestimos.nextID
	f.emprestimos.nextID++
	f.emprestimos.emprestimos[id] = &domain.Emprestimo{
		ID:             id,
		UsuarioID:      usuarioID,
		LivroID:        livroID,
		DataEmprestimo: fixedNow.Add(-abertoHa),
		DataPrevista:   fixedNow.Add(-abertoHa).Add(DefaultPrazoDevolucao),
	}
}

func TestEmprestimoService_AbrirEmprestimo(t *testing.T) {
	tests := []struct {
		name    string
		input   AbrirEmprestimoInput
		setup   func(*emprestimoFixture)
		wantErr error
	}{
		{
			name:  "success",
			input: AbrirEmprestimoInput{UsuarioID: 1, LivroID: 1},
			setup: func(f *emprestimoFixture) {
				f.addUsuario(1)
				f.addLivro(1, true)
			},
		},
		{
			name:    "invalid input - missing user",
			input:   AbrirEmprestimoInput{LivroID: 1},
			wantErr: domain.ErrEntradaInvalida,
		},
		{
			name:    "invalid input - missing book",
			input:   AbrirEmprestimoInput{UsuarioID: 1},
			wantErr: domain.ErrEntradaInvalida,
		},
		{
			name:  "user not found",
			input: AbrirEmprestimoInput{UsuarioID: 99, LivroID: 1},
			setup: func(f *emprestimoFixture) {
				f.addLivro(1, true)
			},
			wantErr: domain.ErrUsuarioNaoEncontrado,
		},
		{
			name:  "overdue loan blocks new loans",
			input: AbrirEmprestimoInput{UsuarioID: 1, LivroID: 2},
			setup: func(f *emprestimoFixture) {
				f.addUsuario(1)
				f.addLivro(1, false)
				f.addLivro(2, true)
				f.addEmprestimo(1, 1, 16*24*time.Hour)
			},
			wantErr: domain.ErrUsuarioComAtraso,
		},
		{
			name:  "loan at exactly 15 days is not overdue",
			input: AbrirEmprestimoInput{UsuarioID: 1, LivroID: 2},
			setup: func(f *emprestimoFixture) {
				f.addUsuario(1)
				f.addLivro(1, false)
				f.addLivro(2, true)
				f.addEmprestimo(1, 1, 15*24*time.Hour)
			},
		},
		{
			name:  "open loan limit reached",
			input: AbrirEmprestimoInput{UsuarioID: 1, LivroID: 4},
			setup: func(f *emprestimoFixture) {
				f.addUsuario(1)
				for id := int64(1); id <= 3; id++ {
					f.addLivro(id, false)
					f.addEmprestimo(1, id, 24*time.Hour)
				}
				f.addLivro(4, true)
			},
			wantErr: domain.ErrLimiteEmprestimos,
		},
		{
			name:  "book not found",
			input: AbrirEmprestimoInput{UsuarioID: 1, LivroID: 99},
			setup: func(f *emprestimoFixture) {
				f.addUsuario(1)
			},
			wantErr: domain.ErrLivroNaoEncontrado,
		},
		{
			name:  "book unavailable",
			input: AbrirEmprestimoInput{UsuarioID: 1, LivroID: 1},
			setup: func(f *emprestimoFixture) {
				f.addUsuario(1)
				f.addLivro(1, false)
			},
			wantErr: domain.ErrLivroIndisponivel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEmprestimoFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			output, err := f.svc.AbrirEmprestimo(context.Background(), tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			e := output.Emprestimo
			if e.ID == 0 {
				t.Error("expected loan ID to be set")
			}
			if e.Devolvido {
				t.Error("expected new loan to be open")
			}
			if !e.DataEmprestimo.Equal(fixedNow) {
				t.Errorf("expected loan date %v, got %v", fixedNow, e.DataEmprestimo)
			}
			want := fixedNow.Add(DefaultPrazoDevolucao)
			if !e.DataPrevista.Equal(want) {
				t.Errorf("expected due date %v, got %v", want, e.DataPrevista)
			}
			if f.livros.livros[tt.input.LivroID].Disponivel {
				t.Error("expected book to be unavailable after loan opened")
			}
		})
	}
}

func TestEmprestimoService_AbrirEmprestimo_FailedOpenKeepsAvailability(t *testing.T) {
	f := newEmprestimoFixture(t)
	f.addUsuario(1)
	f.addLivro(1, true)
	for id := int64(2); id <= 4; id++ {
		f.addLivro(id, false)
		f.addEmprestimo(1, id, 24*time.Hour)
	}

	_, err := f.svc.AbrirEmprestimo(context.Background(), AbrirEmprestimoInput{UsuarioID: 1, LivroID: 1})
	if !errors.Is(err, domain.ErrLimiteEmprestimos) {
		t.Fatalf("expected %v, got %v", domain.ErrLimiteEmprestimos, err)
	}

	if !f.livros.livros[1].Disponivel {
		t.Error("expected book availability to be unchanged after rejected loan")
	}
	if len(f.emprestimos.emprestimos) != 3 {
		t.Errorf("expected no loan row created, have %d", len(f.emprestimos.emprestimos))
	}
}

func TestEmprestimoService_DevolverEmprestimo(t *testing.T) {
	t.Run("success flips book back to available", func(t *testing.T) {
		f := newEmprestimoFixture(t)
		f.addUsuario(1)
		f.addLivro(1, false)
		f.addEmprestimo(1, 1, 24*time.Hour)

		output, err := f.svc.DevolverEmprestimo(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		e := output.Emprestimo
		if !e.Devolvido {
			t.Error("expected loan to be closed")
		}
		if e.DataDevolucao == nil || !e.DataDevolucao.Equal(fixedNow) {
			t.Errorf("expected return date %v, got %v", fixedNow, e.DataDevolucao)
		}
		if !f.livros.livros[1].Disponivel {
			t.Error("expected book to be available after return")
		}
	})

	t.Run("double close is rejected", func(t *testing.T) {
		f := newEmprestimoFixture(t)
		f.addUsuario(1)
		f.addLivro(1, false)
		f.addEmprestimo(1, 1, 24*time.Hour)

		if _, err := f.svc.DevolverEmprestimo(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error on first close: %v", err)
		}

		_, err := f.svc.DevolverEmprestimo(context.Background(), 1)
		if !errors.Is(err, domain.ErrEmprestimoJaDevolvido) {
			t.Errorf("expected %v, got %v", domain.ErrEmprestimoJaDevolvido, err)
		}
	})

	t.Run("loan not found", func(t *testing.T) {
		f := newEmprestimoFixture(t)

		_, err := f.svc.DevolverEmprestimo(context.Background(), 99)
		if !errors.Is(err, domain.ErrEmprestimoNaoEncontrado) {
			t.Errorf("expected %v, got %v", domain.ErrEmprestimoNaoEncontrado, err)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		f := newEmprestimoFixture(t)

		_, err := f.svc.DevolverEmprestimo(context.Background(), 0)
		if !errors.Is(err, domain.ErrEntradaInvalida) {
			t.Errorf("expected %v, got %v", domain.ErrEntradaInvalida, err)
		}
	})
}

func TestEmprestimoService_ReopenAfterReturn(t *testing.T) {
	f := newEmprestimoFixture(t)
	f.addUsuario(1)
	f.addLivro(1, true)
	ctx := context.Background()

	out, err := f.svc.AbrirEmprestimo(ctx, AbrirEmprestimoInput{UsuarioID: 1, LivroID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A second loan against the checked-out book is rejected.
	if _, err := f.svc.AbrirEmprestimo(ctx, AbrirEmprestimoInput{UsuarioID: 1, LivroID: 1}); !errors.Is(err, domain.ErrLivroIndisponivel) {
		t.Fatalf("expected %v, got %v", domain.ErrLivroIndisponivel, err)
	}

	if _, err := f.svc.DevolverEmprestimo(ctx, out.Emprestimo.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// After the return the book can be borrowed again.
	if _, err := f.svc.AbrirEmprestimo(ctx, AbrirEmprestimoInput{UsuarioID: 1, LivroID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEmprestimoService_GetEmprestimo(t *testing.T) {
	f := newEmprestimoFixture(t)
	f.addUsuario(1)
	f.addLivro(1, false)
	f.addEmprestimo(1, 1, 24*time.Hour)

	e, err := f.svc.GetEmprestimo(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.LivroTitulo != "Dom Casmurro" {
		t.Errorf("expected joined book title, got %q", e.LivroTitulo)
	}

	if _, err := f.svc.GetEmprestimo(context.Background(), 99); !errors.Is(err, domain.ErrEmprestimoNaoEncontrado) {
		t.Errorf("expected %v, got %v", domain.ErrEmprestimoNaoEncontrado, err)
	}
}

func TestEmprestimoService_BookReplaceKeepsLoanExclusive(t *testing.T) {
	f := newEmprestimoFixture(t)
	f.addUsuario(1)
	f.addLivro(1, true)

	autores := NewMockAutorRepository()
	autores.autores[1] = &domain.Autor{ID: 1, Nome: "Machado De Assis"}
	livroSvc := NewLivroService(f.livros, autores, zerolog.Nop())

	if _, err := f.svc.AbrirEmprestimo(context.Background(), AbrirEmprestimoInput{UsuarioID: 1, LivroID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Replacing the book without the availability flag must not free it.
	if _, err := livroSvc.UpdateLivro(context.Background(), UpdateLivroInput{
		ID: 1, Titulo: "Dom Casmurro", ISBN: "9788535910663",
		AnoPublicacao: 1899, AutorID: 1,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.svc.AbrirEmprestimo(context.Background(), AbrirEmprestimoInput{UsuarioID: 1, LivroID: 1})
	if !errors.Is(err, domain.ErrLivroIndisponivel) {
		t.Errorf("expected %v, got %v", domain.ErrLivroIndisponivel, err)
	}
}

func TestEmprestimoService_ListEmprestimos(t *testing.T) {
	f := newEmprestimoFixture(t)
	f.addUsuario(1)
	f.addUsuario(2)
	f.addLivro(1, false)
	f.addLivro(2, false)
	f.addEmprestimo(1, 1, 48*time.Hour)
	f.addEmprestimo(2, 2, 24*time.Hour)

	emprestimos, err := f.svc.ListEmprestimos(context.Background(), repository.EmprestimoFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(emprestimos) != 2 {
		t.Fatalf("expected 2 loans, got %d", len(emprestimos))
	}
	// Newest first.
	if emprestimos[0].LivroID != 2 {
		t.Errorf("expected newest loan first, got livro %d", emprestimos[0].LivroID)
	}

	filtrados, err := f.svc.ListEmprestimos(context.Background(), repository.EmprestimoFilter{UsuarioID: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filtrados) != 1 || filtrados[0].UsuarioID != 2 {
		t.Errorf("expected only user 2's loan, got %d loans", len(filtrados))
	}
}
