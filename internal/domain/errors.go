// Package domain contains the core business entities for Acervo.
package domain

import "errors"

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ===========================================
	// Input Errors
	// ===========================================

	// ErrEntradaInvalida indicates a missing or malformed required field.
	ErrEntradaInvalida = errors.New("dados obrigatórios ausentes ou inválidos")

	// ErrOrdenacaoInvalida indicates the sort key is not in the allow-list.
	ErrOrdenacaoInvalida = errors.New("campo de ordenação inválido")

	// ===========================================
	// Autor Errors
	// ===========================================

	// ErrAutorNaoEncontrado indicates the requested author does not exist.
	ErrAutorNaoEncontrado = errors.New("autor não encontrado")

	// ErrAutorJaExiste indicates an author with the same name (case-insensitive) exists.
	ErrAutorJaExiste = errors.New("já existe um autor cadastrado com este nome")

	// ===========================================
	// Usuario Errors
	// ===========================================

	// ErrUsuarioNaoEncontrado indicates the requested user does not exist.
	ErrUsuarioNaoEncontrado = errors.New("usuário não encontrado")

	// ErrUsuarioJaExiste indicates a user with the same email (case-insensitive) exists.
	ErrUsuarioJaExiste = errors.New("já existe um usuário cadastrado com este email")

	// ErrEmailInvalido indicates the email does not match the expected format.
	ErrEmailInvalido = errors.New("formato de email inválido")

	// ===========================================
	// Livro Errors
	// ===========================================

	// ErrLivroNaoEncontrado indicates the requested book does not exist.
	ErrLivroNaoEncontrado = errors.New("livro não encontrado")

	// ErrLivroIndisponivel indicates the book is checked out by an open loan.
	ErrLivroIndisponivel = errors.New("livro não disponível para empréstimo")

	// ===========================================
	// Emprestimo Errors
	// ===========================================

	// ErrEmprestimoNaoEncontrado indicates the requested loan does not exist.
	ErrEmprestimoNaoEncontrado = errors.New("empréstimo não encontrado")

	// ErrEmprestimoJaDevolvido indicates the loan was already closed.
	ErrEmprestimoJaDevolvido = errors.New("empréstimo já devolvido")

	// ErrLimiteEmprestimos indicates the user reached the open-loan limit.
	ErrLimiteEmprestimos = errors.New("usuário já atingiu o limite de empréstimos simultâneos")

	// ErrUsuarioComAtraso indicates the user has an overdue open loan.
	ErrUsuarioComAtraso = errors.New("usuário possui empréstimos em atraso")

	// ===========================================
	// Referential Integrity
	// ===========================================

	// ErrRegistroReferenciado indicates the entity is referenced by another
	// (author with books, user or book with loans) and cannot be deleted.
	ErrRegistroReferenciado = errors.New("registro referenciado por outros e não pode ser removido")
)
