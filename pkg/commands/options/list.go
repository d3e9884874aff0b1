package options

import (
	"github.com/spf13/cobra"
)

// ListOptions narrow a task listing beyond the session context.
type ListOptions struct {
	All      bool
	Archived bool
	Project  string
	Scope    string
}

// AddListArgs wires listing flags on the provided command.
func AddListArgs(cmd *cobra.Command, o *ListOptions) {
	cmd.Flags().BoolVarP(&o.All, "all", "a", false,
		"Ignore the session context.")
	cmd.Flags().BoolVar(&o.Archived, "archived", false,
		"Include completed tasks.")
	cmd.Flags().StringVarP(&o.Project, "project", "p", "",
		"Only tasks in this project.")
	cmd.Flags().StringVarP(&o.Scope, "scope", "s", "",
		"Only tasks in this scope.")
}
