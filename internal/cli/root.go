package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/optiflow/optiflow/ctxlog"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// NewRootCmd builds the optiflow command tree.
func NewRootCmd() *cobra.Command {
	var logLevel string
	var logFormat string

	cmd := &cobra.Command{
		Use:   "optiflow",
		Short: "A modular optimization pipeline",
		Long: `Optiflow solves optimization problems assembled from modules.
It loads a problem instance from a file, validates it, builds a
mathematical model, and solves it with the bundled solver.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := strings.ToLower(logLevel)
			switch level {
			case "debug", "info", "warn", "error":
				// valid
			default:
				return &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
			}

			format := strings.ToLower(logFormat)
			if format != "text" && format != "json" {
				return &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
			}

			logger := newLogger(level, format, cmd.ErrOrStderr())
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")

	cmd.AddCommand(newSolveCmd())
	return cmd
}
