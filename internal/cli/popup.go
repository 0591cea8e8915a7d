package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arko-chat/nativekit/internal/models"
)

func newPopupCmd(g *globals) *cobra.Command {
	var (
		title   string
		message string
		buttons []string
		choose  int
	)

	cmd := &cobra.Command{
		Use:   "popup",
		Short: "Show a modal popup with up to three buttons",
		Example: `  nativekit popup --title "Rate us" --button Yes --button Later --button No
  nativekit popup --button OK --choose 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := g.newHost(cmd)
			if err != nil {
				return err
			}
			defer h.Close()

			out := cmd.OutOrStdout()
			result := models.Dismissed
			closed := false
			err = h.Services.Popup.Show(models.PopupRequest{
				Title:   title,
				Message: message,
				Buttons: buttons,
				OnClose: func(index int) {
					result, closed = index, true
				},
			})
			if err != nil {
				return err
			}

			if err := answer(h, cmd.InOrStdin(), out, choose); err != nil {
				return err
			}
			h.Tick()

			if !closed {
				fmt.Fprintln(out, "popup is still showing on the native side")
				return nil
			}
			if result == models.Dismissed {
				fmt.Fprintln(out, "dismissed")
				return nil
			}
			fmt.Fprintf(out, "pressed button %d (%s)\n", result, buttons[result])
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "Popup", "Dialog title")
	cmd.Flags().StringVar(&message, "message", "", "Dialog message")
	cmd.Flags().StringArrayVar(&buttons, "button", nil, "Button title, repeat for up to three buttons")
	cmd.Flags().IntVar(&choose, "choose", -1, "Press this button instead of reading stdin")
	return cmd
}
