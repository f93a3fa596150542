package mapping

import (
	"fmt"

	"sqljob-generator/internal/diagnostic"
)

// Validate reports rows that cannot contribute to the generated view.
// Nothing here is fatal: the generator still emits SQL for the remaining rows.
func Validate(ds *Dataset) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if ds == nil {
		res.AddError("dataset_is_nil", "dataset is nil", "", "")
		return res
	}

	if len(ds.Rows) == 0 {
		res.AddError("empty_sheet", "mapping sheet has no data rows", "", "")
		return res
	}

	if len(ds.Targets()) == 0 {
		res.AddWarning(diagnostic.CodeEmptyTarget, "no row names a target table", "", "")
	}

	for _, r := range ds.Rows {
		subject := fmt.Sprintf("row %d", r.Line)

		if r.TargetColumn == "" && r.TransformationRule != "" {
			res.AddWarning("orphan_transformation",
				"transformation text on a row without a target column is ignored", r.TargetTable, subject)
		}

		if r.SourceTable == "" && r.TargetColumn != "" {
			res.AddInfo("no_source_table",
				fmt.Sprintf("target column %q has no source table", r.TargetColumn), r.TargetTable, subject)
		}
	}

	return res
}
