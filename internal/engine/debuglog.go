package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"sqljob-generator/internal/plan"
	"sqljob-generator/internal/validate"
)

// Debug log file names.
const (
	JoinsLog           = "joins_debug.log"
	BusinessRulesLog   = "business_rules_debug.log"
	TransformationsLog = "transformations_debug.log"
	ValidatorLog       = "sql_validator.log"
)

// DebugOptions selects the debug logs to append to.
type DebugOptions struct {
	Dir string

	Joins           bool
	BusinessRules   bool
	Transformations bool
	Validator       bool
}

// AllDebug enables every debug log under dir.
func AllDebug(dir string) DebugOptions {
	return DebugOptions{Dir: dir, Joins: true, BusinessRules: true, Transformations: true, Validator: true}
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

type debugLog struct {
	opts DebugOptions
}

func newDebugLog(opts DebugOptions) *debugLog {
	if opts.Dir == "" {
		opts = DebugOptions{}
	}

	return &debugLog{opts: opts}
}

func (d *debugLog) dir() string {
	if !d.opts.Joins && !d.opts.BusinessRules && !d.opts.Transformations && !d.opts.Validator {
		return ""
	}

	return d.opts.Dir
}

// append adds one section to name. Logs are never truncated.
func (d *debugLog) append(name, header, body string) error {
	if err := os.MkdirAll(d.opts.Dir, 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(d.opts.Dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	_, werr := fmt.Fprintf(f, "=== %s ===\n%s\n", header, strings.TrimRight(body, "\n"))
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}

	return werr
}

func (d *debugLog) joins(header string, p *plan.ResolvedViewPlan) error {
	if !d.opts.Joins {
		return nil
	}

	var b strings.Builder

	fmt.Fprintf(&b, "base: %s %s\n", p.BaseTable, p.BaseAlias)

	for _, n := range p.Trace.Joins {
		fmt.Fprintf(&b, "note: %s\n", n)
	}

	for _, j := range p.Joins {
		fmt.Fprintf(&b, "join: %s\n", j.String())
	}

	b.WriteString(dumper.Sdump(p.Joins))

	return d.append(JoinsLog, header, b.String())
}

func (d *debugLog) businessRules(header string, p *plan.ResolvedViewPlan) error {
	if !d.opts.BusinessRules {
		return nil
	}

	var b strings.Builder

	for _, r := range p.Trace.BusinessRules {
		fmt.Fprintf(&b, "line %d: %q\n", r.Line, r.Text)
		b.WriteString(dumper.Sdump(r.Result))
	}

	return d.append(BusinessRulesLog, header, b.String())
}

func (d *debugLog) transformations(header string, p *plan.ResolvedViewPlan) error {
	if !d.opts.Transformations {
		return nil
	}

	var b strings.Builder

	for _, t := range p.Trace.Transformations {
		fmt.Fprintf(&b, "line %d %s [%s]: %q\n", t.Line, t.Column, t.Kind, t.Raw)
		b.WriteString(dumper.Sdump(t.Fragment))
	}

	return d.append(TransformationsLog, header, b.String())
}

func (d *debugLog) validator(header string, res validate.Result) error {
	if !d.opts.Validator {
		return nil
	}

	var b strings.Builder

	if len(res.Warnings) == 0 && len(res.Changes) == 0 {
		b.WriteString("ok\n")
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", w)
	}

	for _, c := range res.Changes {
		fmt.Fprintf(&b, "fixed: %s\n", c)
	}

	return d.append(ValidatorLog, header, b.String())
}
