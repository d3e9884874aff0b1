package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/barely/pkg/app"
	"tableflip.dev/barely/pkg/task"
)

// addContextCommands registers the verbs that only make sense inside a
// session: they change or read state that ends with the process.
func addContextCommands(topLevel *cobra.Command, s *Session) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "use <project|none>",
		Short: "Narrow commands to a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := s.Service()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ref := strings.Join(args, " ")
			if strings.EqualFold(ref, "none") || strings.EqualFold(ref, "all") {
				svc.ClearContextProject()
				return nil
			}
			p, err := svc.FindProject(ctx, ref)
			if err != nil {
				return s.finish(ctx, err)
			}
			svc.SetContextProject(*p)
			return nil
		},
	})

	topLevel.AddCommand(&cobra.Command{
		Use:   "scope <backlog|week|today|all>",
		Short: "Narrow commands to a scope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := s.Service()
			if err != nil {
				return err
			}
			sc := app.ScopeAll
			if !strings.EqualFold(args[0], "all") {
				if sc, err = task.ParseScope(args[0]); err != nil {
					return s.finish(cmd.Context(), err)
				}
			}
			return s.finish(cmd.Context(), svc.SetContextScope(sc))
		},
	})

	topLevel.AddCommand(&cobra.Command{
		Use:   "context [clear]",
		Short: "Show or clear the current context",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := s.Service()
			if err != nil {
				return err
			}
			if len(args) == 1 && strings.EqualFold(args[0], "clear") {
				svc.ClearContext()
			}
			cur := svc.CurrentContext()
			return s.Output.Write(contextView(cur), func() {
				s.printer(cmd.Context()).Context(cur)
			})
		},
	})

	topLevel.AddCommand(&cobra.Command{
		Use:   "undo",
		Short: "Reverse the most recent change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := s.Service()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			r, err := svc.Undo(ctx)
			if err != nil {
				return s.finish(ctx, err)
			}
			return s.Output.Write(r, func() {
				s.printer(ctx).Reversal(r)
			})
		},
	})
}

type contextDTO struct {
	Project *task.Project `json:"project,omitempty" yaml:"project,omitempty"`
	Scope   string        `json:"scope,omitempty" yaml:"scope,omitempty"`
}

func contextView(c app.Context) contextDTO {
	return contextDTO{Project: c.Project, Scope: string(c.Scope)}
}
