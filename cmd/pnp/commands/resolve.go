package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/pnp/internal/app"
	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/core/ppath"
	"go.trai.ch/pnp/internal/engine/scheduler"
)

type resolutionOutput struct {
	Request string       `json:"request"`
	Issuer  string       `json:"issuer"`
	Path    *string      `json:"path"`
	Builtin bool         `json:"builtin,omitempty"`
	Status  string       `json:"status"`
	Error   *errorOutput `json:"error,omitempty"`
}

type errorOutput struct {
	Code    domain.ErrorCode `json:"code,omitempty"`
	Message string           `json:"message"`
	Data    map[string]any   `json:"data,omitempty"`
}

func newResolutionOutput(res scheduler.Result) resolutionOutput {
	out := resolutionOutput{
		Request: res.Job.Request,
		Issuer:  ppath.FromPortable(res.Job.Issuer),
		Builtin: res.Builtin,
		Status:  string(res.Status),
	}
	if res.Err == nil && !res.Builtin {
		p := ppath.FromPortable(res.Path)
		out.Path = &p
	}
	if res.Err != nil {
		out.Error = &errorOutput{Message: res.Err.Error()}
		if resErr, ok := domain.AsResolutionError(res.Err); ok {
			out.Error.Code, out.Error.Data = resErr.Code, resErr.Data
		}
	}
	return out
}

func (c *CLI) newResolveCmd() *cobra.Command {
	var opts app.ResolveOptions

	cmd := &cobra.Command{
		Use:   "resolve [requests...]",
		Short: "Resolve requests to files on disk",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}

			sess, err := c.open(cmd)
			if err != nil {
				return err
			}

			results, resolveErr := c.app.Resolve(cmd.Context(), sess, args, opts)
			if len(results) == 0 {
				return resolveErr
			}

			outputs := make([]resolutionOutput, len(results))
			for i, res := range results {
				outputs[i] = newResolutionOutput(res)
			}

			err = c.print(cmd, outputs, func(w io.Writer) {
				for _, out := range outputs {
					switch {
					case out.Error != nil:
						_, _ = fmt.Fprintf(w, "%s\t(failed)\n", out.Request)
					case out.Builtin:
						_, _ = fmt.Fprintf(w, "%s\tbuiltin\n", out.Request)
					default:
						_, _ = fmt.Fprintf(w, "%s\t%s\n", out.Request, *out.Path)
					}
				}
			})
			return errors.Join(err, resolveErr)
		},
	}

	cmd.Flags().StringVar(&opts.Issuer, "issuer", "", "File or directory (trailing slash) issuing the requests")
	cmd.Flags().BoolVar(&opts.NoBuiltins, "no-builtins", false, "Do not treat builtin module names as builtins")
	cmd.Flags().BoolVarP(&opts.Unqualified, "unqualified", "u", false, "Stop before extension and index lookup")
	cmd.Flags().StringSliceVar(&opts.Extensions, "ext", nil, "Extensions to try, in order")
	return cmd
}
