package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/barely/pkg/task"
)

func addPull(topLevel *cobra.Command, s *Session) {
	cmd := &cobra.Command{
		Use:   "pull [ids] <scope>",
		Short: "Move tasks between backlog, week and today",
		Example: `
barely pull 3,4 today
barely pull week
barely pull 5 backlog
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a target scope")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			last := len(args) - 1
			target, err := task.ParseScope(args[last])
			if err != nil {
				return s.finish(cmd.Context(), err)
			}
			return s.pull(cmd.Context(), args[:last], target)
		},
	}
	topLevel.AddCommand(cmd)
}

func (s *Session) pull(ctx context.Context, args []string, target task.Scope) error {
	svc, err := s.Service()
	if err != nil {
		return err
	}
	ids, err := s.selectTasks(ctx, svc, args)
	if err != nil {
		return s.finish(ctx, err)
	}
	tasks, err := svc.Pull(ctx, ids, target)
	if err != nil {
		return s.finish(ctx, err)
	}
	return s.Output.Write(tasks, func() {
		s.printer(ctx).Changed("pulled", tasks, "to "+string(target))
	})
}
