package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"
	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/core/ppath"
)

func (c *CLI) newLocateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locate <path>",
		Short: "Print the package owning a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.open(cmd)
			if err != nil {
				return err
			}

			locator, ok, err := c.app.Locate(sess, args[0])
			if err != nil {
				return err
			}

			var out *domain.Locator
			if ok {
				out = &locator
			}
			return c.print(cmd, out, func(w io.Writer) {
				if !ok {
					_, _ = fmt.Fprintf(w, "%s: not governed\n", args[0])
					return
				}
				_, _ = fmt.Fprintln(w, locator.String())
			})
		},
	}
}

type infoOutput struct {
	Locator             domain.Locator     `json:"locator"`
	PackageLocation     string             `json:"packageLocation"`
	PackageDependencies map[string]*string `json:"packageDependencies"`
	PackagePeers        []string           `json:"packagePeers"`
	LinkType            domain.LinkType    `json:"linkType"`
	DiscardFromLookup   bool               `json:"discardFromLookup,omitempty"`
}

func newInfoOutput(l domain.Locator, info *domain.PackageInformation) infoOutput {
	out := infoOutput{
		Locator:             l,
		PackageLocation:     ppath.FromPortable(info.PackageLocation),
		PackageDependencies: make(map[string]*string, len(info.PackageDependencies)),
		PackagePeers:        slices.Sorted(maps.Keys(info.PackagePeers)),
		LinkType:            info.LinkType,
		DiscardFromLookup:   info.DiscardFromLookup,
	}
	for name, target := range info.PackageDependencies {
		if target.IsNull() {
			out.PackageDependencies[name] = nil
			continue
		}
		s := target.String()
		out.PackageDependencies[name] = &s
	}
	return out
}

func (c *CLI) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [name|- [reference]]",
		Short: "Print the registry entry of a package, the top level for -",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name, reference string
			if len(args) > 0 && args[0] != "-" {
				name = args[0]
			}
			if len(args) > 1 {
				reference = args[1]
			}

			sess, err := c.open(cmd)
			if err != nil {
				return err
			}

			locator, info, err := c.app.Info(sess, name, reference)
			if err != nil {
				return err
			}

			out := newInfoOutput(locator, info)
			return c.print(cmd, out, func(w io.Writer) {
				_, _ = fmt.Fprintf(w, "locator:  %s\n", locator.String())
				_, _ = fmt.Fprintf(w, "location: %s\n", out.PackageLocation)
				_, _ = fmt.Fprintf(w, "linkType: %s\n", out.LinkType)
				if out.DiscardFromLookup {
					_, _ = fmt.Fprintln(w, "discardFromLookup: true")
				}
				if len(out.PackageDependencies) > 0 {
					_, _ = fmt.Fprintln(w, "dependencies:")
				}
				for _, dep := range slices.Sorted(maps.Keys(out.PackageDependencies)) {
					target := "null"
					if t := out.PackageDependencies[dep]; t != nil {
						target = *t
					}
					_, _ = fmt.Fprintf(w, "  %s -> %s\n", dep, target)
				}
				for _, peer := range out.PackagePeers {
					_, _ = fmt.Fprintf(w, "  peer %s\n", peer)
				}
			})
		},
	}
}

func (c *CLI) newLocatorsCmd() *cobra.Command {
	var roots bool

	cmd := &cobra.Command{
		Use:   "locators",
		Short: "List every package locator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := c.open(cmd)
			if err != nil {
				return err
			}

			locators := c.app.Locators(sess, roots)
			return c.print(cmd, locators, func(w io.Writer) {
				for _, l := range locators {
					_, _ = fmt.Fprintln(w, l.String())
				}
			})
		},
	}
	cmd.Flags().BoolVar(&roots, "roots", false, "Only list the dependency tree roots")
	return cmd
}

func (c *CLI) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Describe the opened runtime",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := c.open(cmd)
			if err != nil {
				return err
			}

			st := c.app.Status(sess)
			st.State = ppath.FromPortable(st.State)
			st.BasePath = ppath.FromPortable(st.BasePath)
			return c.print(cmd, st, func(w io.Writer) {
				_, _ = fmt.Fprintf(w, "state:       %s\n", st.State)
				_, _ = fmt.Fprintf(w, "fingerprint: %s\n", st.Fingerprint)
				_, _ = fmt.Fprintf(w, "base path:   %s\n", st.BasePath)
				_, _ = fmt.Fprintf(w, "packages:    %d\n", st.Packages)
				_, _ = fmt.Fprintf(w, "roots:       %d\n", st.Roots)
				_, _ = fmt.Fprintf(w, "fallbacks:   %d\n", len(st.Fallbacks))
				_, _ = fmt.Fprintf(w, "api:         std %d\n", st.Versions.Std)
			})
		},
	}
}
