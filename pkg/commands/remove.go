package commands

import (
	"github.com/spf13/cobra"
)

func addRemove(topLevel *cobra.Command, s *Session) {
	cmd := &cobra.Command{
		Use:     "rm [ids]",
		Aliases: []string{"delete"},
		Short:   "Delete tasks permanently",
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
			tasks, err := svc.Delete(ctx, ids)
			if err != nil {
				return s.finish(ctx, err)
			}
			return s.Output.Write(tasks, func() {
				s.printer(ctx).Changed("deleted", tasks, "")
			})
		},
	}

	topLevel.AddCommand(cmd)
}
