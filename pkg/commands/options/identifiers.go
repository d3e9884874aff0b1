package options

import (
	"tableflip.dev/barely/pkg/app"
)

// IDOptions hold task ids given on the command line.
type IDOptions struct {
	IDs []int64
}

// Parse accepts ids as separate arguments or comma separated, "1,2 3".
func (o *IDOptions) Parse(args []string) error {
	ids, err := app.ParseIDs(args...)
	if err != nil {
		return err
	}
	o.IDs = ids
	return nil
}
