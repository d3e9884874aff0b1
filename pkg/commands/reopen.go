package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/barely/pkg/commands/options"
	"tableflip.dev/barely/pkg/task"
)

func addReopen(topLevel *cobra.Command, s *Session) {
	var scope string

	cmd := &cobra.Command{
		Use:     "reopen <ids>",
		Aliases: []string{"undone"},
		Short:   "Bring completed tasks back",
		Example: `
barely reopen 7 --scope today
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires task ids, see 'ls --archived'")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := s.Service()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			target, err := task.ParseScope(scope)
			if err != nil {
				return s.finish(ctx, err)
			}
			ids := &options.IDOptions{}
			if err := ids.Parse(args); err != nil {
				return s.finish(ctx, err)
			}
			tasks, err := svc.Reactivate(ctx, ids.IDs, target)
			if err != nil {
				return s.finish(ctx, err)
			}
			return s.Output.Write(tasks, func() {
				s.printer(ctx).Changed("reopened", tasks, "in "+string(target))
			})
		},
	}

	cmd.Flags().StringVarP(&scope, "scope", "s", string(task.Backlog), "Scope to reopen into.")
	topLevel.AddCommand(cmd)
}
