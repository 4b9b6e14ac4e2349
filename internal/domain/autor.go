package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Autor represents a book author.
type Autor struct {
	ID   int64  `json:"id"`
	Nome string `json:"nome"`
}

var nomeCaser = cases.Title(language.BrazilianPortuguese)

// NormalizarNome trims the name, collapses internal whitespace and
// title-cases each word. Applied when an author is created so that
// "  maria  SILVA " and "Maria Silva" are the same author.
func NormalizarNome(nome string) string {
	return nomeCaser.String(strings.Join(strings.Fields(nome), " "))
}
