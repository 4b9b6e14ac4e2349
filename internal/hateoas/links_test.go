package hateoas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rels(links []Link) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		out = append(out, l.Rel)
	}
	return out
}

func TestLivroLinks(t *testing.T) {
	b := NewBuilder("/api")

	t.Run("disponível oferece emprestar", func(t *testing.T) {
		links := b.Livro(7, true)
		assert.Equal(t, []string{"self", "update", "delete", "emprestar"}, rels(links))
		assert.Equal(t, "/api/livros/7", links[0].Href)
		assert.Equal(t, "POST", links[3].Method)
	})

	t.Run("indisponível oferece devolver", func(t *testing.T) {
		links := b.Livro(7, false)
		assert.Equal(t, []string{"self", "update", "delete", "devolver"}, rels(links))
		assert.Equal(t, "PUT", links[3].Method)
	})
}

func TestEmprestimoLinks(t *testing.T) {
	b := NewBuilder("/api")

	t.Run("aberto tem link de devolução", func(t *testing.T) {
		links := b.Emprestimo(3, 1, 2, false)
		require.Len(t, links, 4)
		assert.Equal(t, []string{"self", "usuario", "livro", "devolver"}, rels(links))
		assert.Equal(t, "/api/emprestimos/3/devolucao", links[3].Href)
	})

	t.Run("devolvido não tem link de devolução", func(t *testing.T) {
		links := b.Emprestimo(3, 1, 2, true)
		assert.Equal(t, []string{"self", "usuario", "livro"}, rels(links))
	})
}

func TestAutorUsuarioLinks(t *testing.T) {
	b := NewBuilder("")

	autor := b.Autor(5)
	assert.Equal(t, []string{"self", "update", "delete", "livros"}, rels(autor))
	assert.Equal(t, "/livros?autor_id=5", autor[3].Href)

	usuario := b.Usuario(9)
	assert.Equal(t, []string{"self", "update", "delete", "emprestimos"}, rels(usuario))
	assert.Equal(t, "/emprestimos?usuario_id=9", usuario[3].Href)
}
