package vanilla

// ChromeClass is a typed identifier for the semantic CSS classes the sheet
// markup carries.
type ChromeClass string

const (
	ClassSheet    ChromeClass = "modelsheet"
	ClassHeader   ChromeClass = "modelsheet-header"
	ClassSummary  ChromeClass = "modelsheet-summary"
	ClassTable    ChromeClass = "modelsheet-table"
	ClassForm     ChromeClass = "modelsheet-form"
	ClassField    ChromeClass = "modelsheet-field"
	ClassActions  ChromeClass = "modelsheet-actions"
	ClassErrors   ChromeClass = "modelsheet-errors"
	ClassEmpty    ChromeClass = "modelsheet-empty"
	ClassNavigate ChromeClass = "modelsheet-nav"
)

// DefaultClasses maps template slots to their classes. WithClasses overrides
// individual slots.
func DefaultClasses() map[string]string {
	return map[string]string{
		"sheet":    string(ClassSheet),
		"header":   string(ClassHeader),
		"summary":  string(ClassSummary),
		"table":    string(ClassTable),
		"form":     string(ClassForm),
		"field":    string(ClassField),
		"actions":  string(ClassActions),
		"errors":   string(ClassErrors),
		"empty":    string(ClassEmpty),
		"navigate": string(ClassNavigate),
	}
}
