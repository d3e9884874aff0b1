package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/shlex"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"tableflip.dev/barely/pkg/commands/options"
)

var errExit = errors.New("exit")

func addREPL(topLevel *cobra.Command, s *Session) {
	cmd := &cobra.Command{
		Use:     "repl",
		Aliases: []string{"shell"},
		Short:   "Start an interactive session",
		Long: `Start an interactive session. The session keeps a context (a project and
a scope) that narrows later commands, and an undo history of the last ten
changes. Both end when the session ends.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return s.Loop(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}

// Loop reads and dispatches lines until exit or end of input.
func (s *Session) Loop(ctx context.Context) error {
	svc, err := s.Service()
	if err != nil {
		return err
	}
	r := s.reader()
	for {
		line, err := r.ReadLine(svc.Prompt())
		switch {
		case errors.Is(err, promptui.ErrInterrupt):
			s.printer(ctx).Notice("^C (press Ctrl+D or type 'exit' to quit)")
			continue
		case errors.Is(err, io.EOF), errors.Is(err, promptui.ErrEOF):
			return nil
		case err != nil:
			return err
		}
		if err := s.Dispatch(ctx, line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			_, _ = fmt.Fprintf(s.errOut(), "error: %v\n", err)
		}
	}
}

// Dispatch runs one session line. Each line gets a fresh command tree so
// flag values never leak from one line to the next.
func (s *Session) Dispatch(ctx context.Context, line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		args = strings.Fields(line)
	}
	if len(args) == 0 {
		return nil
	}
	args[0] = strings.ToLower(args[0])

	root := s.lineCommand()
	root.SetArgs(args)
	root.SetOut(s.Out)
	root.SetErr(s.errOut())
	root.SetIn(s.in())
	return root.ExecuteContext(ctx)
}

func (s *Session) lineCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "barely",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	options.AddOutputArg(root, s.Output)
	root.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return s.Output.Validate()
	}

	addTaskCommands(root, s)
	addContextCommands(root, s)
	root.AddCommand(&cobra.Command{
		Use:     "exit",
		Aliases: []string{"quit", "q"},
		Short:   "Leave the session",
		RunE: func(*cobra.Command, []string) error {
			return errExit
		},
	})
	return root
}
