package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newRateCmd(g *globals) *cobra.Command {
	var (
		force  bool
		choose int
	)

	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Ask for a store rating if the usage policy allows it",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := g.newHost(cmd)
			if err != nil {
				return err
			}
			defer h.Close()

			out := cmd.OutOrStdout()
			policy := h.Rating
			fmt.Fprintf(out, "state: %s, used for %s since last asked\n",
				policy.State(), policy.Elapsed().Round(time.Second))

			if err := policy.Show(0, nil, force); err != nil {
				return err
			}
			if popup := h.Services.FallbackPopup; popup != nil {
				if _, ok := popup.Active(); !ok {
					fmt.Fprintln(out, "not asking yet")
					return nil
				}
			}
			if err := answer(h, cmd.InOrStdin(), out, choose); err != nil {
				return err
			}
			h.Tick()
			fmt.Fprintf(out, "state: %s\n", policy.State())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Ask even if the policy says not to")
	cmd.Flags().IntVar(&choose, "choose", -1, "Press this button instead of reading stdin")
	return cmd
}
