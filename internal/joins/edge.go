package joins

import "strings"

// MissingOnComment marks an edge whose condition could not be recovered.
const MissingOnComment = "FIXME: join condition missing"

// Edge is a normalized join.
type Edge struct {
	Type   Type
	Entity string
	Alias  string
	On     string
	// Comment is rendered after the condition, without "--".
	Comment string
	// Raw is the fragment the edge was parsed from.
	Raw string
}

// Render returns the edge as a JOIN clause joining source instead of the
// entity name. An empty source joins the entity itself.
func (e Edge) Render(source string) string {
	if source == "" {
		source = e.Entity
	}

	var b strings.Builder

	b.WriteString(string(e.Type))
	b.WriteString(" JOIN ")
	b.WriteString(source)

	if !strings.EqualFold(source, e.Alias) {
		b.WriteString(" ")
		b.WriteString(e.Alias)
	}

	b.WriteString(" ON ")
	b.WriteString(e.On)

	if e.Comment != "" {
		b.WriteString(" -- ")
		b.WriteString(e.Comment)
	}

	return b.String()
}

// String renders the edge against its entity.
func (e Edge) String() string {
	return e.Render("")
}
