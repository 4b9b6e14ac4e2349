// Package repository provides the data access layer for Acervo.
// This file contains the aggregate types shared by both database drivers.
package repository

import "context"

// Repositories holds all repository instances for one database driver.
type Repositories struct {
	Autor      AutorRepository
	Usuario    UsuarioRepository
	Livro      LivroRepository
	Emprestimo EmprestimoRepository
}

// DatabaseHealth is the interface health endpoints use to probe the store.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Close() error
}
