package options

import (
	"github.com/spf13/cobra"
)

// AddOptions
type AddOptions struct {
	Description string
	Project     string
	Scope       string
	Column      string
	Here        bool
}

func AddTaskArgs(cmd *cobra.Command, o *AddOptions) {
	cmd.Flags().StringVarP(&o.Description, "description", "d", "",
		"Longer description of the task.")
	cmd.Flags().StringVarP(&o.Project, "project", "p", "",
		"Project name or id to file the task under.")
	cmd.Flags().StringVarP(&o.Scope, "scope", "s", "",
		`Scope for the new task: backlog, week or today. Default backlog.`)
	cmd.Flags().StringVarP(&o.Column, "column", "c", "",
		"Workflow column name or id.")
	cmd.Flags().BoolVar(&o.Here, "here", false,
		"Use the current context's project and scope for the new task.")
}
