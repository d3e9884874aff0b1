package commands

import (
	"github.com/spf13/cobra"
)

func addComplete(topLevel *cobra.Command, s *Session) {
	cmd := &cobra.Command{
		Use:     "done [ids]",
		Aliases: []string{"complete", "completed"},
		Short:   "Complete tasks and archive them",
		Example: `
barely done 7
barely done 1,2,3
barely done
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := s.Service()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ids, err := s.selectTasks(ctx, svc, args)
			if err != nil {
				return s.finish(ctx, err)
			}
			tasks, err := svc.Complete(ctx, ids)
			if err != nil {
				return s.finish(ctx, err)
			}
			return s.Output.Write(tasks, func() {
				s.printer(ctx).Changed("completed", tasks, "")
			})
		},
	}

	topLevel.AddCommand(cmd)
}
