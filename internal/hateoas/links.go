// Package hateoas derives navigation links from entity state.
// Builders are pure functions: no side effects, no failure mode.
package hateoas

import "fmt"

// Link describes a valid follow-up request for an entity.
type Link struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Method string `json:"method"`
}

// Builder assembles link sets with a fixed base path (e.g. "/api").
type Builder struct {
	base string
}

// NewBuilder creates a Builder. basePath may be empty.
func NewBuilder(basePath string) *Builder {
	return &Builder{base: basePath}
}

// Autor returns the link set for an author.
func (b *Builder) Autor(id int64) []Link {
	return []Link{
		{Rel: "self", Href: fmt.Sprintf("%s/autores/%d", b.base, id), Method: "GET"},
		{Rel: "update", Href: fmt.Sprintf("%s/autores/%d", b.base, id), Method: "PUT"},
		{Rel: "delete", Href: fmt.Sprintf("%s/autores/%d", b.base, id), Method: "DELETE"},
		{Rel: "livros", Href: fmt.Sprintf("%s/livros?autor_id=%d", b.base, id), Method: "GET"},
	}
}

// Usuario returns the link set for a user.
func (b *Builder) Usuario(id int64) []Link {
	return []Link{
		{Rel: "self", Href: fmt.Sprintf("%s/usuarios/%d", b.base, id), Method: "GET"},
		{Rel: "update", Href: fmt.Sprintf("%s/usuarios/%d", b.base, id), Method: "PUT"},
		{Rel: "delete", Href: fmt.Sprintf("%s/usuarios/%d", b.base, id), Method: "DELETE"},
		{Rel: "emprestimos", Href: fmt.Sprintf("%s/emprestimos?usuario_id=%d", b.base, id), Method: "GET"},
	}
}

// Livro returns the link set for a book. An available book offers "emprestar";
// an unavailable one offers "devolver".
func (b *Builder) Livro(id int64, disponivel bool) []Link {
	links := []Link{
		{Rel: "self", Href: fmt.Sprintf("%s/livros/%d", b.base, id), Method: "GET"},
		{Rel: "update", Href: fmt.Sprintf("%s/livros/%d", b.base, id), Method: "PUT"},
		{Rel: "delete", Href: fmt.Sprintf("%s/livros/%d", b.base, id), Method: "DELETE"},
	}
	if disponivel {
		links = append(links, Link{Rel: "emprestar", Href: b.base + "/emprestimos", Method: "POST"})
	} else {
		links = append(links, Link{Rel: "devolver", Href: b.base + "/emprestimos/{id}/devolucao", Method: "PUT"})
	}
	return links
}

// Emprestimo returns the link set for a loan. The "devolver" link is present
// only while the loan is open.
func (b *Builder) Emprestimo(id, usuarioID, livroID int64, devolvido bool) []Link {
	links := []Link{
		{Rel: "self", Href: fmt.Sprintf("%s/emprestimos/%d", b.base, id), Method: "GET"},
		{Rel: "usuario", Href: fmt.Sprintf("%s/usuarios/%d", b.base, usuarioID), Method: "GET"},
		{Rel: "livro", Href: fmt.Sprintf("%s/livros/%d", b.base, livroID), Method: "GET"},
	}
	if !devolvido {
		links = append(links, Link{
			Rel:    "devolver",
			Href:   fmt.Sprintf("%s/emprestimos/%d/devolucao", b.base, id),
			Method: "PUT",
		})
	}
	return links
}

// Self returns a minimal link set pointing at a freshly created entity.
func (b *Builder) Self(recurso string, id int64) []Link {
	return []Link{
		{Rel: "self", Href: fmt.Sprintf("%s/%s/%d", b.base, recurso, id), Method: "GET"},
	}
}
