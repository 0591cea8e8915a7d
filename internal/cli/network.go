package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arko-chat/nativekit/internal/models"
)

func newNetworkCmd(g *globals) *cobra.Command {
	var watch time.Duration

	cmd := &cobra.Command{
		Use:   "network",
		Short: "Report the current network technology",
		Long: `Report the radio technology, reachability and whether the connection counts
as fast enough. With --watch, keep running and print every change the native
side pushes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := g.newHost(cmd)
			if err != nil {
				return err
			}
			defer h.Close()

			out := cmd.OutOrStdout()
			net := h.Services.Network
			fmt.Fprintf(out, "backend:      %s\n", net.Kind())
			fmt.Fprintf(out, "type:         %s\n", net.CurrentType(true))
			fmt.Fprintf(out, "reachability: %s\n", net.Reachability())
			fmt.Fprintf(out, "fast enough:  %t\n", net.IsFastEnough())

			if watch <= 0 {
				return nil
			}
			net.Subscribe(func(t models.NetworkType) {
				fmt.Fprintf(out, "%s changed: %s\n", time.Now().Format(time.TimeOnly), t)
			})
			ctx, cancel := context.WithTimeout(cmd.Context(), watch)
			defer cancel()
			return h.Run(ctx)
		},
	}

	cmd.Flags().DurationVar(&watch, "watch", 0, "Keep listening for changes this long")
	return cmd
}
