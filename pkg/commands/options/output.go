package options

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// OutputOptions
type OutputOptions struct {
	JSON bool
	YAML bool
	// Out defaults to color.Output.
	Out io.Writer
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.PersistentFlags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
	cmd.PersistentFlags().BoolVar(&po.YAML, "yaml", false,
		"Output as YAML.")
}

func (o *OutputOptions) out() io.Writer {
	if o.Out == nil {
		return color.Output
	}
	return o.Out
}

// Structured reports whether output is machine readable.
func (o *OutputOptions) Structured() bool {
	return o.JSON || o.YAML
}

func (o *OutputOptions) Validate() error {
	if o.JSON && o.YAML {
		return errors.New("--json and --yaml are mutually exclusive")
	}
	return nil
}

// Write encodes v when structured output was requested, otherwise it calls
// pretty.
func (o *OutputOptions) Write(v any, pretty func()) error {
	switch {
	case o.JSON:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(o.out(), string(b))
		return err
	case o.YAML:
		b, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(o.out(), string(b))
		return err
	}
	if pretty != nil {
		pretty()
	}
	return nil
}

func (o *OutputOptions) HandleError(err error) error {
	if o.Structured() && err != nil {
		out := map[string]string{
			"error": err.Error(),
		}
		if werr := o.Write(out, nil); werr != nil {
			return werr
		}
		return nil
	}
	return err
}
