package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/typeconv/store"
)

type snapshotOptions struct {
	db  string
	dup string
}

// NewSnapshotCommand creates the snapshot command group.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &snapshotOptions{}
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save and show validated parameter snapshots",
	}
	cmd.PersistentFlags().StringVar(&opts.db, "db", "typeconv.db", "snapshot database file")

	save := &cobra.Command{
		Use:   "save <name> <spec-file> <values-file>",
		Short: "Validate a values file and store it as a snapshot",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			name := args[0]
			out, err := convertFile(args[1], args[2], opts.dup)
			if err != nil {
				return f.Fail(fmt.Sprintf("%s is invalid", args[2]), err)
			}
			state, ok := out.(map[string]any)
			if !ok {
				return NewExitError(ExitCommandError, fmt.Sprintf("snapshot %q: values must be a mapping, got %T", name, out))
			}
			s, err := store.Open(cmd.Context(), opts.db)
			if err != nil {
				return WrapExitError(ExitCommandError, "open snapshot database", err)
			}
			defer s.Close()
			id, err := s.Save(cmd.Context(), name, state)
			if err != nil {
				return WrapExitError(ExitCommandError, "save snapshot", err)
			}
			return f.Success(fmt.Sprintf("saved snapshot %s of %q", id, name), map[string]any{"id": id, "name": name})
		},
	}
	save.Flags().StringVar(&opts.dup, "dup", "error", "duplicate key policy (error|warn|ignore)")

	show := &cobra.Command{
		Use:   "show <name>",
		Short: "Print the latest snapshot of a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			s, err := store.Open(cmd.Context(), opts.db)
			if err != nil {
				return WrapExitError(ExitCommandError, "open snapshot database", err)
			}
			defer s.Close()
			snap, err := s.Latest(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "show snapshot", err)
			}
			return f.Success(fmt.Sprintf("snapshot %s of %q (%s)", snap.ID, snap.Name, snap.CreatedAt.Format("2006-01-02 15:04:05")), snap.State)
		},
	}

	cmd.AddCommand(save, show)
	return cmd
}
