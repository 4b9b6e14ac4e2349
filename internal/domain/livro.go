package domain

// Livro represents a book in the collection.
// Disponivel is true unless exactly one open loan references the book;
// it is flipped only as a side effect of opening and closing loans.
type Livro struct {
	ID            int64  `json:"id"`
	Titulo        string `json:"titulo"`
	ISBN          string `json:"isbn"`
	AnoPublicacao int    `json:"ano_publicacao"`
	Disponivel    bool   `json:"disponivel"`
	Autor         Autor  `json:"autor"`
}
