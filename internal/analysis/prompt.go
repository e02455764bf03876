package analysis

import "strings"

// buildPrompt wraps the extracted document text in the analysis
// instructions. The assistant is asked for bare findings, one per line,
// plus a JSON block; ParseResponse handles both shapes.
func buildPrompt(documentText string) string {
	var b strings.Builder
	b.WriteString("Przeanalizuj poniższą zawartość dokumentu i wyodrębnij kluczowe informacje. ")
	b.WriteString("Przedstaw każdą informację w osobnej linii:\n\n")
	b.WriteString(documentText)
	b.WriteString("\n\nWyodrębnij:\n")
	b.WriteString("- istotne informacje wynikające z otrzymanych danych\n")
	b.WriteString("- dane w formacie JSON\n\n")
	b.WriteString("Nie dodawaj żadnych nagłówków ani opisów - tylko same dane.")
	return b.String()
}
