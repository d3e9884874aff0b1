package commands

import (
	"errors"

	"github.com/spf13/cobra"
)

func addMove(topLevel *cobra.Command, s *Session) {
	cmd := &cobra.Command{
		Use:   "mv [ids] <column>",
		Short: "Move tasks to a workflow column",
		Example: `
barely mv 3 "In Progress"
barely mv 3,4 done
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a column")
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
			last := len(args) - 1
			col, err := svc.FindColumn(ctx, args[last])
			if err != nil {
				return s.finish(ctx, err)
			}
			ids, err := s.selectTasks(ctx, svc, args[:last])
			if err != nil {
				return s.finish(ctx, err)
			}
			tasks, err := svc.Move(ctx, ids, col.ID)
			if err != nil {
				return s.finish(ctx, err)
			}
			return s.Output.Write(tasks, func() {
				s.printer(ctx).Changed("moved", tasks, "to "+col.Name)
			})
		},
	}

	topLevel.AddCommand(cmd)
}
