package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/pnp/internal/core/ppath"
)

type virtualOutput struct {
	Path    string `json:"path"`
	Real    string `json:"real"`
	Virtual bool   `json:"virtual"`
}

func (c *CLI) newVirtualCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "virtual <path>",
		Short: "Print the real path behind a virtual path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.open(cmd)
			if err != nil {
				return err
			}

			out := virtualOutput{Path: args[0], Real: args[0]}
			if resolved, ok := c.app.Virtual(sess, args[0]); ok {
				out.Real, out.Virtual = ppath.FromPortable(resolved), true
			}
			return c.print(cmd, out, func(w io.Writer) {
				_, _ = fmt.Fprintln(w, out.Real)
			})
		},
	}
	cmd.AddCommand(c.newVirtualMakeCmd())
	return cmd
}

func (c *CLI) newVirtualMakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "make <base> <component> <target>",
		Short: "Print the virtual path presenting target under base",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.app.MakeVirtual(args[0], args[1], args[2])
			if err != nil {
				return err
			}

			out := virtualOutput{Path: p, Real: args[2], Virtual: true}
			return c.print(cmd, out, func(w io.Writer) {
				_, _ = fmt.Fprintln(w, p)
			})
		},
	}
}
