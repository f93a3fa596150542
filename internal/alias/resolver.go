package alias

import (
	"strconv"
	"strings"

	"sqljob-generator/internal/common"
)

// Resolver assigns and remembers statement-unique aliases.
type Resolver struct {
	strategies []Strategy

	order   []string          // lower-cased tables in first-seen order
	names   map[string]string // lower table -> first-seen casing
	byTable map[string]string // lower table -> alias
	byAlias map[string]string // lower alias -> lower table
}

// NewResolver creates a resolver that consults strategies in order.
// SyntheticStrategy is appended when absent so resolution never fails.
func NewResolver(strategies ...Strategy) *Resolver {
	hasSynthetic := false

	for _, s := range strategies {
		if _, ok := s.(SyntheticStrategy); ok {
			hasSynthetic = true
		}
	}

	if !hasSynthetic {
		strategies = append(strategies, SyntheticStrategy{})
	}

	return &Resolver{
		strategies: strategies,
		names:      map[string]string{},
		byTable:    map[string]string{},
		byAlias:    map[string]string{},
	}
}

// Resolve returns the alias for table, assigning one on first use.
func (r *Resolver) Resolve(table string) string {
	key := tableKey(table)
	if a, ok := r.byTable[key]; ok {
		return a
	}

	for _, s := range r.strategies {
		a, ok := s.Alias(table)
		if !ok || !usable(a) {
			continue
		}

		return r.assign(table, a)
	}

	return r.assign(table, Synthesize(table))
}

// Claim returns the alias of table, preferring the given alias when the table
// has none yet. A preferred alias already taken by another table gets a numeric suffix.
func (r *Resolver) Claim(table, preferred string) string {
	if a, ok := r.byTable[tableKey(table)]; ok {
		return a
	}

	if !usable(preferred) {
		return r.Resolve(table)
	}

	return r.assign(table, preferred)
}

// Lookup returns the alias of an already-resolved table.
func (r *Resolver) Lookup(table string) (string, bool) {
	a, ok := r.byTable[tableKey(table)]
	return a, ok
}

// Table returns the table (first-seen casing) bound to alias.
func (r *Resolver) Table(alias string) (string, bool) {
	key, ok := r.byAlias[strings.ToLower(alias)]
	if !ok {
		return "", false
	}

	return r.names[key], true
}

// Known reports whether name is a resolved table or an assigned alias.
func (r *Resolver) Known(name string) bool {
	lower := strings.ToLower(name)
	_, isAlias := r.byAlias[lower]
	_, isTable := r.byTable[tableKey(name)]

	return isAlias || isTable
}

// Tables returns resolved tables in first-seen order and casing.
func (r *Resolver) Tables() []string {
	out := make([]string, len(r.order))
	for i, k := range r.order {
		out[i] = r.names[k]
	}

	return out
}

func (r *Resolver) assign(table, candidate string) string {
	base := strings.ToLower(candidate)
	if IsReserved(base) {
		base += "_t"
	}

	a := base

	for n := 1; r.taken(a); n++ {
		a = base + strconv.Itoa(n)
	}

	key := tableKey(table)
	r.order = append(r.order, key)
	r.names[key] = common.LeafName(table)
	r.byTable[key] = a
	r.byAlias[a] = key

	return a
}

func (r *Resolver) taken(a string) bool {
	if IsReserved(a) {
		return true
	}

	_, ok := r.byAlias[a]

	return ok
}

func usable(a string) bool {
	if a == "" || IsReserved(a) {
		return false
	}

	for i, c := range a {
		letter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
		if !letter && (i == 0 || c < '0' || c > '9') {
			return false
		}
	}

	return true
}

func tableKey(table string) string {
	return strings.ToLower(common.LeafName(table))
}
