package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/barely/pkg/commands/options"
)

func New() *cobra.Command {
	s := newSession()

	cmd := &cobra.Command{
		Use:   "barely",
		Short: base.Wrap80("Minimal task management on the command line."),
		Long: base.Wrap80("Tasks live in a backlog, get pulled into this week and today, " +
			"and are archived when done. Run without a command to start the interactive session."),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s.bind(cmd)
			return s.Output.Validate()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return s.Close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return s.Loop(cmd.Context())
		},
	}

	options.AddOutputArg(cmd, s.Output)
	options.AddLogArgs(cmd, s.Log)
	options.InteractiveArgs(cmd, s.Input)

	AddCommands(cmd, s)
	return cmd
}

func AddCommands(topLevel *cobra.Command, s *Session) {
	addTaskCommands(topLevel, s)
	addREPL(topLevel, s)
	addMCP(topLevel, s)
	addVersion(topLevel)
	addCompletions(topLevel)
	addUpgrade(topLevel)
}

// addTaskCommands registers the verbs shared by one-shot use and the
// interactive session.
func addTaskCommands(topLevel *cobra.Command, s *Session) {
	addAdd(topLevel, s)
	addList(topLevel, s)
	addShow(topLevel, s)
	addPull(topLevel, s)
	addComplete(topLevel, s)
	addReopen(topLevel, s)
	addRemove(topLevel, s)
	addEdit(topLevel, s)
	addMove(topLevel, s)
	addProject(topLevel, s)
}
