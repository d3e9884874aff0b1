package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/barely/pkg/app"
	"tableflip.dev/barely/pkg/task"
)

func addEdit(topLevel *cobra.Command, s *Session) {
	var (
		description string
		project     string
	)

	cmd := &cobra.Command{
		Use:   "edit <id> [new title]",
		Short: "Change a task's title, description or project",
		Example: `
barely edit 4 write the annual report
barely edit 4 --project none
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a task id")
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
			ids, err := app.ParseIDs(args[0])
			if err != nil {
				return s.finish(ctx, err)
			}
			if len(ids) != 1 {
				return s.finish(ctx, errors.New("edit takes exactly one task id"))
			}
			id := ids[0]

			var t *task.Task
			if title := strings.Join(args[1:], " "); title != "" {
				if t, err = svc.Retitle(ctx, id, title); err != nil {
					return s.finish(ctx, err)
				}
			}
			if cmd.Flags().Changed("description") {
				if t, err = svc.Describe(ctx, id, description); err != nil {
					return s.finish(ctx, err)
				}
			}
			if cmd.Flags().Changed("project") {
				var pid *int64
				if !strings.EqualFold(project, "none") {
					p, err := svc.FindProject(ctx, project)
					if err != nil {
						return s.finish(ctx, err)
					}
					pid = &p.ID
				}
				if t, err = svc.Assign(ctx, id, pid); err != nil {
					return s.finish(ctx, err)
				}
			}
			if t == nil {
				return s.finish(ctx, errors.New("nothing to change, give a title or a flag"))
			}
			return s.Output.Write(t, func() {
				s.printer(ctx).Changed("edited", []*task.Task{t}, "")
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "New description.")
	cmd.Flags().StringVarP(&project, "project", "p", "", `Project name or id, "none" to detach.`)
	topLevel.AddCommand(cmd)
}
