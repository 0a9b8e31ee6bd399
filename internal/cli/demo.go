package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hupe1980/soa"
	"github.com/hupe1980/soa/testutil"
)

func newDemoCommand(a *app) *cobra.Command {
	var showAddr bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Build the three-record sample batch and print it",
		Long: `Build a container from three records

  {x: 0, v: [10 11 12 13]}, {x: 4, v: [20]}, {x: 8, v: [30 31]}

each with a 2x2 matrix m, then print every record view, the dense field
arrays and the storage layout.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := a.cfg.Options()
			if err != nil {
				return err
			}

			c, err := soa.FromRecords(cmd.Context(), testutil.DemoBatch(), opts...)
			if err != nil {
				return err
			}
			defer c.Close()

			return printDemo(cmd.OutOrStdout(), c, showAddr)
		},
	}

	cmd.Flags().BoolVar(&showAddr, "addr", false, "print element addresses of every view")
	return cmd
}

func printDemo(out io.Writer, c *soa.Container[testutil.Demo], showAddr bool) error {
	heading := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgYellow)

	heading.Fprintf(out, "records: %d\n", c.Len())
	for i, v := range c.All() {
		label.Fprintf(out, "[%d] ", i)
		if err := soa.Dump(out, v); err != nil {
			return err
		}
		if showAddr {
			label.Fprint(out, "    ")
			if err := soa.DumpAddr(out, v); err != nil {
				return err
			}
		}
	}

	heading.Fprintln(out, "columns:")
	if err := c.DumpColumns(out); err != nil {
		return err
	}

	heading.Fprintln(out, "layout:")
	if err := printLayout(out, c.Layout()); err != nil {
		return err
	}

	sum, err := c.Checksum()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "checksum=%#08x\n", sum)
	return err
}

func printLayout(out io.Writer, l soa.LayoutReport) error {
	dim := color.New(color.Faint)

	fmt.Fprintf(out, "alignment=%d policy=%s backend=%s total=%d padding=%d\n",
		l.Alignment, l.Policy, l.Backend, l.TotalBytes, l.Padding)
	for _, f := range l.Fields {
		fmt.Fprintf(out, "  %-24s offset=%-8d footprint=%-8d elements=%d", f.Field.String(), f.Offset, f.Footprint, f.Elements)
		dim.Fprintf(out, " padding=%d\n", f.Padding)
	}
	return nil
}
