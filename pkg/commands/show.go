package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/barely/pkg/app"
)

func addShow(topLevel *cobra.Command, s *Session) {
	cmd := &cobra.Command{
		Use:     "show <id>",
		Aliases: []string{"info"},
		Short:   "Show every field of one task",
		Example: `
barely show 7
barely show 7 --yaml
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := s.Service()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(args[0]), "#"), 10, 64)
			if err != nil || id <= 0 {
				return s.finish(ctx, fmt.Errorf("invalid task id %q: %w", args[0], app.ErrInvalidArgument))
			}
			t, err := svc.Task(ctx, id)
			if err != nil {
				return s.finish(ctx, err)
			}
			return s.Output.Write(t, func() {
				column := ""
				if c, err := svc.FindColumn(ctx, strconv.FormatInt(t.ColumnID, 10)); err == nil {
					column = c.Name
				}
				s.printer(ctx).Detail(t, column)
			})
		},
	}
	topLevel.AddCommand(cmd)
}
