package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/soa"
	"github.com/hupe1980/soa/codec"
	"github.com/hupe1980/soa/testutil"
)

func newLayoutCommand(a *app) *cobra.Command {
	var (
		records int
		maxLen  int
		seed    int64
		zipf    float64
		asJSON  bool
		extents bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Plan the storage layout of a random particle batch",
		Long: `Plan the storage layout of a batch of random particles without
allocating storage. Vector lengths are uniform in [0, max-len], or follow
Zipf's law with the given skew when --zipf is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if records < 0 || maxLen < 0 {
				return fmt.Errorf("records and max-len must not be negative")
			}
			opts, err := a.cfg.Options()
			if err != nil {
				return err
			}

			rng := testutil.NewRNG(seed)
			var lengths []int
			if zipf > 0 {
				lengths = rng.ZipfLengths(records, maxLen+1, zipf)
			} else {
				lengths = rng.Lengths(records, maxLen)
			}
			batch := rng.ParticlesWithLengths(lengths)

			schema, err := soa.Reflect[testutil.Particle]()
			if err != nil {
				return err
			}
			report, err := soa.NewBuilder(schema, opts...).Plan(batch)
			if err != nil {
				return err
			}
			if !extents {
				for i := range report.Fields {
					report.Fields[i].Extents = nil
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := codec.GoJSON{}.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}
			return printLayout(out, report)
		},
	}

	cmd.Flags().IntVarP(&records, "records", "n", 1000, "number of records")
	cmd.Flags().IntVar(&maxLen, "max-len", 16, "maximum vector length")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().Float64Var(&zipf, "zipf", 0, "Zipf skew of vector lengths (0: uniform)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")
	cmd.Flags().BoolVar(&extents, "extents", false, "include vector offset tables in JSON output")
	return cmd
}
