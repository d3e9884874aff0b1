package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/barely/pkg/app"
	"tableflip.dev/barely/pkg/commands/options"
	"tableflip.dev/barely/pkg/task"
)

func addList(topLevel *cobra.Command, s *Session) {
	lo := &options.ListOptions{}

	cmd := &cobra.Command{
		Use:     "ls [scope]",
		Aliases: []string{"list"},
		Short:   "List tasks in the current context",
		Example: `
barely ls
barely ls today
barely ls --project Work --archived
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := lo.Scope
			if len(args) == 1 {
				scope = args[0]
			}
			return s.list(cmd, lo, scope)
		},
	}

	options.AddListArgs(cmd, lo)
	topLevel.AddCommand(cmd)

	// today, week and backlog are views of one scope, still narrowed by the
	// context project.
	for _, sc := range task.ActiveScopes {
		sc := sc
		vo := &options.ListOptions{}
		view := &cobra.Command{
			Use:   string(sc),
			Short: "List tasks in " + string(sc),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return s.list(cmd, vo, string(sc))
			},
		}
		view.Flags().StringVarP(&vo.Project, "project", "p", "", "Only tasks in this project.")
		topLevel.AddCommand(view)
	}
}

func (s *Session) list(cmd *cobra.Command, lo *options.ListOptions, scope string) error {
	cmd.SilenceUsage = true
	svc, err := s.Service()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	o := app.ListOptions{IgnoreContext: lo.All, Archived: lo.Archived}
	switch strings.ToLower(scope) {
	case "":
	case string(task.Archived), "done":
		o.Scope = task.Archived
	default:
		if o.Scope, err = task.ParseScope(scope); err != nil {
			return s.finish(ctx, err)
		}
	}
	if lo.Project != "" {
		p, err := svc.FindProject(ctx, lo.Project)
		if err != nil {
			return s.finish(ctx, err)
		}
		o.ProjectID = &p.ID
	}

	tasks, err := svc.Tasks(ctx, o)
	if err != nil {
		return s.finish(ctx, err)
	}
	return s.Output.Write(tasks, func() {
		pp := s.printer(ctx)
		pp.TitleWithCount(listTitle(svc.CurrentContext(), o, lo.All), len(tasks))
		pp.Tasks(tasks)
	})
}

func listTitle(c app.Context, o app.ListOptions, all bool) string {
	if all {
		if o.Scope != "" {
			return string(o.Scope)
		}
		return "All tasks"
	}
	if o.Scope != "" {
		c.Scope = o.Scope
	}
	title := strings.Join(c.Labels(), " | ")
	if title == "" {
		return "All tasks"
	}
	return title
}
