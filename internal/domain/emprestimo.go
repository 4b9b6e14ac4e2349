package domain

import "time"

// Emprestimo represents a loan binding one user to one book for a bounded period.
//
// State machine: a loan is created open (Devolvido=false) and transitions
// exactly once to closed (Devolvido=true, DataDevolucao stamped). Closing an
// already-closed loan is rejected with ErrEmprestimoJaDevolvido.
type Emprestimo struct {
	ID             int64      `json:"id"`
	UsuarioID      int64      `json:"usuario_id"`
	LivroID        int64      `json:"livro_id"`
	DataEmprestimo time.Time  `json:"data_emprestimo"`
	DataPrevista   time.Time  `json:"data_devolucao_prevista"`
	DataDevolucao  *time.Time `json:"data_devolucao,omitempty"`
	Devolvido      bool       `json:"devolvido"`
}

// Aberto reports whether the loan is still open.
func (e *Emprestimo) Aberto() bool {
	return !e.Devolvido
}

// Atrasado reports whether the loan is open and past its predicted return date.
func (e *Emprestimo) Atrasado(ref time.Time) bool {
	return e.Aberto() && ref.After(e.DataPrevista)
}

// EmprestimoDetalhado is a loan joined with the user name and book title,
// as returned by loan listings.
type EmprestimoDetalhado struct {
	Emprestimo
	UsuarioNome string `json:"usuario_nome"`
	LivroTitulo string `json:"livro_titulo"`
}
