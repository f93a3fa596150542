package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"sqljob-generator/internal/common"
)

// Diagnostic codes emitted across the pipeline.
const (
	CodeMissingColumn    = "missing_column"
	CodeLenientParse     = "lenient_parse"
	CodeEmptyTarget      = "empty_target"
	CodeUnclassified     = "unclassified_rule"
	CodeGuarded          = "guarded_expression"
	CodeMissingSource    = "missing_source_column"
	CodeMergedVariants   = "merged_variants"
	CodeSelfJoin         = "self_join"
	CodeAliasConflict    = "alias_conflict"
	CodeAliasLeak        = "alias_leak"
	CodeMissingOn        = "missing_on"
	CodeDuplicateJoin    = "duplicate_join"
	CodeUnbalanced       = "unbalanced"
	CodeUndeclaredAlias  = "undeclared_alias"
	CodeAuditOnlyRule    = "audit_only_rule"
	CodeNoPartitionField = "no_partition_column"
	CodeUnparsedJoin     = "unparsed_join"
)

// Diagnostics holds all diagnostic information from a generation run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Target identifies the target table this relates to (if any).
	Target string
	// Subject names the column, alias or join this relates to (if any).
	Subject string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, target, subject string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: DiagnosticError,
		Code:     code,
		Message:  message,
		Target:   target,
		Subject:  subject,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, target, subject string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: DiagnosticWarning,
		Code:     code,
		Message:  message,
		Target:   target,
		Subject:  subject,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, target, subject string) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: DiagnosticInfo,
		Code:     code,
		Message:  message,
		Target:   target,
		Subject:  subject,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Issues returns the number of errors and warnings.
func (d *Diagnostics) Issues() int {
	return len(d.Errors) + len(d.Warnings)
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// WithTarget returns a copy where every diagnostic lacking a target is stamped with target.
func (d Diagnostics) WithTarget(target string) Diagnostics {
	stamp := func(in []Diagnostic) []Diagnostic {
		out := make([]Diagnostic, len(in))
		for i, x := range in {
			if x.Target == "" {
				x.Target = target
			}

			out[i] = x
		}

		return out
	}

	return Diagnostics{
		Errors:   stamp(d.Errors),
		Warnings: stamp(d.Warnings),
		Infos:    stamp(d.Infos),
	}
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Target != "" {
		prefix = append(prefix, "["+d.Target+"]")
	}

	if d.Subject != "" {
		prefix = append(prefix, d.Subject)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
