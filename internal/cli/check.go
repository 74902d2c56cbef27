package cli

import (
	"fmt"
	"log/slog"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/reoring/typeconv"
	"github.com/reoring/typeconv/source"
	"github.com/reoring/typeconv/specfile"
)

type checkOptions struct {
	dup  string
	dump bool
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check <spec-file> <values-file>",
		Short: "Validate a values file against a specification",
		Long: `Build a converter from a YAML specification file, load a JSON, YAML or
CUE values file, and print the converted value or the validation issues.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			out, err := convertFile(args[0], args[1], opts.dup)
			if err != nil {
				return f.Fail(fmt.Sprintf("%s is invalid", args[1]), err)
			}
			if opts.dump {
				spew.Fdump(cmd.ErrOrStderr(), out)
			}
			return f.Success(fmt.Sprintf("%s is valid", args[1]), out)
		},
	}
	cmd.Flags().StringVar(&opts.dup, "dup", "error", "duplicate key policy (error|warn|ignore)")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "dump the converted value tree to stderr")
	return cmd
}

// convertFile builds the converter of specPath and converts the values file
// through it.
func convertFile(specPath, valuesPath, dup string) (any, error) {
	policy, err := duplicatePolicy(dup)
	if err != nil {
		return nil, err
	}
	conv, err := specfile.BuildFile(specPath)
	if err != nil {
		return nil, err
	}
	slog.Debug("converter built", "spec", specPath, "converter", conv.String())
	values, err := source.File(valuesPath, source.Options{
		OnDuplicate: policy,
		Warn: func(it typeconv.Issue) {
			slog.Warn("duplicate key", "path", it.Path, "file", valuesPath)
		},
	})
	if err != nil {
		return nil, err
	}
	return conv.Convert(values)
}

func duplicatePolicy(s string) (source.DuplicatePolicy, error) {
	switch s {
	case "error":
		return source.DupError, nil
	case "warn":
		return source.DupWarn, nil
	case "ignore":
		return source.DupIgnore, nil
	}
	return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid duplicate policy %q: must be one of [error warn ignore]", s))
}
