package joins

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"sqljob-generator/internal/alias"
	"sqljob-generator/internal/common"
	"sqljob-generator/internal/diagnostic"
	"sqljob-generator/internal/sqltext"
	"sqljob-generator/internal/validate"
)

var (
	withRx    = regexp.MustCompile(`(?is)^([A-Za-z0-9_.]+)(?:\s+([A-Za-z_]\w*))?\s+with\s+([A-Za-z0-9_.]+)(?:\s+([A-Za-z_]\w*))?\s+on\s+(.+)$`)
	segmentRx = regexp.MustCompile(`(?is)^(?:(left|right|full|inner|cross)\s+(?:outer\s+)?)?join\s+([A-Za-z0-9_.]+)(?:\s+(?:as\s+)?([A-Za-z_]\w*))?(?:\s+on\s+(.*))?$`)
	fromRx    = regexp.MustCompile(`(?is)^from\s+([A-Za-z0-9_.]+)(?:\s+(?:as\s+)?([A-Za-z_]\w*))?`)
)

// Normalizer collects the joins of one statement.
type Normalizer struct {
	baseTable string
	baseAlias string
	aliases   *alias.Resolver
	policy    Policy

	edges []Edge
	seen  map[uint64]int
	used  map[string]struct{}
	notes []string
	diags diagnostic.Diagnostics
}

// NewNormalizer creates a normalizer for joins against baseTable. A nil
// policy means DefaultPolicy with no lookup suffixes.
func NewNormalizer(baseTable, baseAlias string, aliases *alias.Resolver, policy Policy) *Normalizer {
	if policy == nil {
		policy = DefaultPolicy{}
	}

	if aliases == nil {
		aliases = alias.NewResolver()
	}

	return &Normalizer{
		baseTable: baseTable,
		baseAlias: strings.ToLower(baseAlias),
		aliases:   aliases,
		policy:    policy,
		seen:      map[uint64]int{},
		used:      map[string]struct{}{strings.ToLower(baseAlias): {}},
	}
}

// Edges returns the normalized joins in discovery order.
func (n *Normalizer) Edges() []Edge {
	return n.edges
}

// Notes returns a human-readable trace of every decision taken.
func (n *Normalizer) Notes() []string {
	return n.notes
}

// Diagnostics returns the issues recorded while normalizing.
func (n *Normalizer) Diagnostics() diagnostic.Diagnostics {
	return n.diags
}

// scope maps lower-cased aliases written in one fragment to their entity.
type scope map[string]string

// Add parses one join fragment, which may hold several joins.
func (n *Normalizer) Add(text string) {
	code, _ := sqltext.SplitComments(text)
	code = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(code), ";"))

	if code == "" {
		return
	}

	local := scope{}

	if m := withRx.FindStringSubmatch(code); m != nil && !segmentRx.MatchString(code) {
		local.declare(m[1], m[2])
		code = "JOIN " + m[3] + " " + m[4] + " ON " + m[5]
		n.note("rewrote WITH phrasing: %s", common.CollapseSpace(text))
	}

	prefix, segments := split(code)
	if m := fromRx.FindStringSubmatch(prefix); m != nil {
		local.declare(m[1], m[2])
	}

	clauses := make([]string, 0, len(segments))

	for _, seg := range segments {
		if i := sqltext.IndexTopLevel(seg, "FROM", "WHERE"); i > 0 {
			tail := strings.TrimSpace(seg[i:])
			if m := fromRx.FindStringSubmatch(tail); m != nil {
				local.declare(m[1], m[2])
			}

			n.note("stripped trailing clause: %s", common.CollapseSpace(tail))
			seg = seg[:i]
		}

		seg = sqltext.Collapse(strings.TrimSpace(seg))
		if m := segmentRx.FindStringSubmatch(seg); m != nil {
			local.declare(m[2], m[3])
		}

		clauses = append(clauses, seg)
	}

	if len(clauses) == 0 {
		n.note("no join found in: %s", common.CollapseSpace(text))
		return
	}

	for _, c := range clauses {
		n.add(c, local, text)
	}
}

func (s scope) declare(table, a string) {
	if a == "" || strings.EqualFold(a, "on") {
		a = common.LeafName(table)
	}

	s[strings.ToLower(a)] = table
}

// split cuts code at every top-level JOIN (with its modifiers) and returns
// the text before the first join and the join segments.
func split(code string) (string, []string) {
	toks := sqltext.Tokens(code)

	var starts []int

	depth := 0

	for i, t := range toks {
		switch {
		case t.Text == "(":
			depth++
		case t.Text == ")":
			depth--
		case depth == 0 && t.Is("JOIN") && (i == 0 || toks[i-1].Text != "."):
			s := i
			for s > 0 && isModifier(toks[s-1]) {
				s--
			}

			starts = append(starts, toks[s].Start)
		}
	}

	if len(starts) == 0 {
		return code, nil
	}

	segments := make([]string, len(starts))

	for i, s := range starts {
		end := len(code)
		if i+1 < len(starts) {
			end = starts[i+1]
		}

		segments[i] = code[s:end]
	}

	return code[:starts[0]], segments
}

func isModifier(t sqltext.Token) bool {
	return t.Is("LEFT") || t.Is("RIGHT") || t.Is("FULL") || t.Is("INNER") || t.Is("CROSS") || t.Is("OUTER")
}

func (n *Normalizer) add(clause string, local scope, raw string) {
	m := segmentRx.FindStringSubmatch(clause)
	if m == nil {
		n.note("unparsed join dropped: %s", clause)
		n.diags.AddWarning(diagnostic.CodeUnparsedJoin, "join fragment could not be parsed", "", clause)

		return
	}

	explicit := ParseType(m[1])
	entity := m[2]
	textAlias := m[3]

	if strings.EqualFold(textAlias, "on") {
		textAlias = ""
	}

	on := strings.TrimSpace(m[4])

	if n.isBase(entity) {
		other, q, ok := n.selfJoinTarget(on, local, entity, textAlias)
		if !ok {
			n.note("self-join on %s dropped: %s", entity, clause)
			n.diags.AddWarning(diagnostic.CodeSelfJoin, "self-join without another entity dropped", "", clause)

			return
		}

		if textAlias != "" {
			local[strings.ToLower(textAlias)] = n.baseTable
		}

		n.note("self-join on %s redirected to %s", entity, other)
		n.diags.AddInfo(diagnostic.CodeSelfJoin, "self-join redirected to "+other, "", clause)

		entity, textAlias = other, ""
		if !strings.EqualFold(q, common.LeafName(other)) {
			textAlias = q
		}
	}

	key := n.signature(entity, on, local, textAlias)
	if i, dup := n.seen[key]; dup {
		n.note("duplicate of %q dropped: %s", n.edges[i].String(), clause)
		n.diags.AddInfo(diagnostic.CodeDuplicateJoin, "duplicate join dropped", "", clause)

		return
	}

	a := n.aliasFor(entity, textAlias)

	e := Edge{
		Type:   n.policy.JoinType(entity, explicit),
		Entity: entity,
		Alias:  a,
		On:     n.rewriteOn(on, local, entity, textAlias, a),
		Raw:    raw,
	}

	if on, changes := validate.Repair(e.On); len(changes) > 0 {
		e.On = on
		n.note("repaired condition of %s: %s", entity, strings.Join(changes, ", "))
		n.diags.AddInfo(diagnostic.CodeUnbalanced, "join condition repaired: "+strings.Join(changes, ", "), "", clause)
	}

	if e.On == "" {
		e.On, e.Comment = "1=1", MissingOnComment
		n.diags.AddWarning(diagnostic.CodeMissingOn, "join without condition, ON 1=1 added", "", clause)
	}

	if explicit != "" && e.Type != explicit {
		n.note("%s JOIN to %s forced to %s", explicit, entity, e.Type)
	}

	n.seen[key] = len(n.edges)
	n.used[a] = struct{}{}
	n.edges = append(n.edges, e)
	n.note("%s -> %s", clause, e.String())
}

func (n *Normalizer) isBase(entity string) bool {
	return strings.EqualFold(common.LeafName(entity), common.LeafName(n.baseTable))
}

// selfJoinTarget finds an entity other than the base referenced by on. A
// known entity wins; otherwise the first unknown qualifier is taken as the
// entity name.
func (n *Normalizer) selfJoinTarget(on string, local scope, entity, textAlias string) (string, string, bool) {
	unknown := ""

	for _, q := range sqltext.Qualifiers(on) {
		e, ok := n.entityOf(q, local, entity, textAlias)
		if ok && !n.isBase(e) {
			return e, q, true
		}

		if !ok && unknown == "" && !alias.IsReserved(q) {
			unknown = q
		}
	}

	if unknown != "" {
		n.diags.AddWarning(diagnostic.CodeSelfJoin, "self-join target "+unknown+" taken from an unresolved qualifier", "", on)
		return unknown, unknown, true
	}

	return "", "", false
}

// entityOf maps a qualifier to the entity it names.
func (n *Normalizer) entityOf(q string, local scope, entity, textAlias string) (string, bool) {
	if (textAlias != "" && strings.EqualFold(q, textAlias)) || strings.EqualFold(q, common.LeafName(entity)) {
		return entity, true
	}

	if t, ok := local[strings.ToLower(q)]; ok {
		return t, true
	}

	if strings.EqualFold(q, n.baseAlias) || n.isBase(q) {
		return n.baseTable, true
	}

	if t, ok := n.aliases.Table(q); ok {
		return t, true
	}

	if _, ok := n.aliases.Lookup(q); ok {
		return q, true
	}

	return "", false
}

// signature identifies a join by its entity and its condition with every
// qualifier replaced by the entity it names.
func (n *Normalizer) signature(entity, on string, local scope, textAlias string) uint64 {
	named := sqltext.RewriteQualifiers(on, func(q string) string {
		e, ok := n.entityOf(q, local, entity, textAlias)
		if !ok {
			e = n.baseTable
		}

		return strings.ToLower(common.LeafName(e))
	})

	parts := []string{strings.ToLower(common.LeafName(entity))}
	for _, t := range sqltext.Tokens(named) {
		if !t.IsComment() {
			parts = append(parts, strings.ToLower(t.Text))
		}
	}

	return xxh3.HashString(strings.Join(parts, " "))
}

// aliasFor returns a statement-unique alias for a join to entity. The first
// join to an entity uses its resolved alias; later joins to the same entity
// keep their written alias when it is free, else get a numeric suffix.
func (n *Normalizer) aliasFor(entity, textAlias string) string {
	written := strings.ToLower(textAlias)
	if alias.IsReserved(written) {
		written = ""
	}

	var a string

	if written != "" {
		a = n.aliases.Claim(entity, written)
	} else {
		a = n.aliases.Resolve(entity)
	}

	if !n.taken(a) {
		if written != "" && a != written {
			n.diags.AddInfo(diagnostic.CodeAliasConflict,
				fmt.Sprintf("alias %s of %s renamed to %s", textAlias, entity, a), "", entity)
		}

		return a
	}

	if written != "" && !n.taken(written) && !n.aliases.Known(written) {
		return written
	}

	for i := 1; ; i++ {
		c := a + strconv.Itoa(i)
		if n.taken(c) || n.aliases.Known(c) {
			continue
		}

		n.diags.AddInfo(diagnostic.CodeAliasConflict,
			fmt.Sprintf("second join to %s aliased %s", entity, c), "", entity)

		return c
	}
}

func (n *Normalizer) taken(a string) bool {
	_, ok := n.used[a]
	return ok
}

// rewriteOn qualifies the condition with statement aliases. Qualifiers
// naming nothing known are leaks and become the base alias.
func (n *Normalizer) rewriteOn(on string, local scope, entity, textAlias, edgeAlias string) string {
	if on == "" {
		return ""
	}

	return sqltext.RewriteQualifiers(on, func(q string) string {
		e, ok := n.entityOf(q, local, entity, textAlias)

		switch {
		case !ok:
			n.diags.AddWarning(diagnostic.CodeAliasLeak,
				"unknown qualifier "+q+" in join rewritten to "+n.baseAlias, "", q)

			return n.baseAlias
		case n.isBase(e):
			return n.baseAlias
		case strings.EqualFold(common.LeafName(e), common.LeafName(entity)):
			return edgeAlias
		default:
			return n.aliases.Resolve(e)
		}
	})
}

func (n *Normalizer) note(format string, args ...any) {
	n.notes = append(n.notes, fmt.Sprintf(format, args...))
}
