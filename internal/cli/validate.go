package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationError is one catalog problem as reported by validate.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Entities []string          `json:"entities,omitempty"`
	Queries  []string          `json:"queries,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <catalog-dir>",
		Short: "Validate an entity catalog",
		Long: `Load every CUE file in a catalog directory and report all entity,
attribute and named query definition errors with their line numbers.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cat, loadErrs := LoadCatalogDir(dir)
	if cat == nil {
		first := loadErrs[0]
		_ = formatter.Error(first.Code, first.Message, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", first.Code, first.Message))
	}

	result := ValidationResult{Valid: len(loadErrs) == 0}
	for _, e := range cat.Entities() {
		result.Entities = append(result.Entities, e.Name)
		formatter.VerboseLog("entity %s: table %s, %d attributes", e.Name, e.Table, len(e.Attributes()))
	}
	for _, q := range cat.Queries() {
		result.Queries = append(result.Queries, q.Name)
		formatter.VerboseLog("query %s over %s", q.Name, q.Entity)
	}
	for _, le := range loadErrs {
		ve := ValidationError{Code: le.Code, Field: le.Field, Message: le.Message}
		if le.Pos.IsValid() {
			ve.Line = le.Pos.Line()
		}
		result.Errors = append(result.Errors, ve)
	}

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Catalog valid: %d entities, %d queries\n", len(result.Entities), len(result.Queries))
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		if err := jsonEncode(formatter, response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		if err.Field != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
			continue
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
