package options

import (
	"github.com/spf13/cobra"
)

// InteractiveOptions
type InteractiveOptions struct {
	NoInput bool
}

func InteractiveArgs(cmd *cobra.Command, o *InteractiveOptions) {
	cmd.PersistentFlags().BoolVar(&o.NoInput, "no-input", false,
		`Never prompt; commands without ids fail instead of offering a picker.`)
}
