package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/barely/pkg/app"
	"tableflip.dev/barely/pkg/commands/options"
	"tableflip.dev/barely/pkg/task"
)

func addAdd(topLevel *cobra.Command, s *Session) {
	ao := &options.AddOptions{}

	cmd := &cobra.Command{
		Use:     "add <title>",
		Aliases: []string{"new"},
		Short:   "Add a task to the backlog",
		Example: `
barely add write the quarterly report
barely add "call the bank" --scope today --project Home
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(strings.Join(args, " ")) == "" {
				return errors.New("requires a task title")
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

			d := app.Draft{
				Title:       strings.Join(args, " "),
				Description: ao.Description,
			}
			if ao.Here {
				cur := svc.CurrentContext()
				d.ProjectID = cur.ProjectID()
				d.Scope = cur.Scope
			}
			if ao.Project != "" {
				p, err := svc.FindProject(ctx, ao.Project)
				if err != nil {
					return s.finish(ctx, err)
				}
				d.ProjectID = &p.ID
			}
			if ao.Scope != "" {
				if d.Scope, err = task.ParseScope(ao.Scope); err != nil {
					return s.finish(ctx, err)
				}
			}
			if ao.Column != "" {
				c, err := svc.FindColumn(ctx, ao.Column)
				if err != nil {
					return s.finish(ctx, err)
				}
				d.ColumnID = c.ID
			}

			t, err := svc.Create(ctx, d)
			if err != nil {
				return s.finish(ctx, err)
			}
			return s.Output.Write(t, func() {
				s.printer(ctx).Changed("added", []*task.Task{t}, "to "+string(t.Scope))
			})
		},
	}

	options.AddTaskArgs(cmd, ao)
	topLevel.AddCommand(cmd)
}
