package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/typeconv"
	"github.com/reoring/typeconv/specfile"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <spec-file>",
		Short: "Print the JSON Schema of a specification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			conv, err := specfile.BuildFile(args[0])
			if err != nil {
				return f.Fail(fmt.Sprintf("%s is not a valid specification", args[0]), err)
			}
			return f.Success("schema of "+args[0], typeconv.JSONSchema(conv))
		},
	}
}
