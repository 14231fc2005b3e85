package evaluation

import (
	"fmt"
	"strings"
)

// Messages holds the learner-facing text for one locale.
type Messages struct {
	Correct        string
	WrongColumns   string
	WrongRowCount  string // expected, actual
	WrongData      string
	Timeout        string
	ExecutionError string
}

var catalog = map[string]Messages{
	"en": {
		Correct:        "Correct! Your query returns exactly the expected result.",
		WrongColumns:   "The columns of your result do not match the expected columns.",
		WrongRowCount:  "Your query returns the right columns but the wrong number of rows: expected %d, got %d.",
		WrongData:      "Your query returns the right columns and number of rows, but some values differ.",
		Timeout:        "Your query took too long to execute. Try simplifying it.",
		ExecutionError: "Your query could not be executed. Check the syntax, table and column names, and try again.",
	},
	"es": {
		Correct:        "¡Correcto! Tu consulta devuelve exactamente el resultado esperado.",
		WrongColumns:   "Las columnas de tu resultado no coinciden con las columnas esperadas.",
		WrongRowCount:  "Tu consulta devuelve las columnas correctas pero un número de filas distinto: se esperaban %d, se obtuvieron %d.",
		WrongData:      "Tu consulta devuelve las columnas y el número de filas correctos, pero algunos valores son distintos.",
		Timeout:        "Tu consulta tardó demasiado en ejecutarse. Intenta simplificarla.",
		ExecutionError: "No se pudo ejecutar tu consulta. Revisa la sintaxis y los nombres de tablas y columnas, e inténtalo de nuevo.",
	},
}

// DefaultLocale is used when a requested locale has no catalog.
const DefaultLocale = "en"

// MessagesFor returns the catalog for locale, falling back to DefaultLocale.
func MessagesFor(locale string) Messages {
	if m, ok := catalog[strings.ToLower(strings.TrimSpace(locale))]; ok {
		return m
	}
	return catalog[DefaultLocale]
}

// Locales lists the supported locale codes.
func Locales() []string {
	return []string{"en", "es"}
}

func (m Messages) forComparison(category Category, cmp ComparisonResult) string {
	switch category {
	case CategoryCorrect:
		return m.Correct
	case CategoryWrongColumns:
		return withDetail(m.WrongColumns, cmp, ColumnMismatch)
	case CategoryWrongRowCount:
		for _, d := range cmp.Differences {
			if d.Type == RowCountMismatch {
				return fmt.Sprintf(m.WrongRowCount, d.Expected, d.Actual)
			}
		}
		return fmt.Sprintf(m.WrongRowCount, 0, 0)
	default:
		return withDetail(m.WrongData, cmp, DataMismatch)
	}
}

func withDetail(base string, cmp ComparisonResult, typ DifferenceType) string {
	for _, d := range cmp.Differences {
		if d.Type == typ && d.Description != "" {
			return base + " " + d.Description
		}
	}
	return base
}
