package cli

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arko-chat/nativekit/internal/capture"
	"github.com/arko-chat/nativekit/internal/host"
	"github.com/arko-chat/nativekit/internal/models"
)

// maxShareTicks bounds how many frames the command waits for the share to
// finish. An image share needs one frame for the capture and one for the
// continuation.
const maxShareTicks = 3

func newShareCmd(g *globals) *cobra.Command {
	var text, url, imagePath, region string

	cmd := &cobra.Command{
		Use:   "share",
		Short: "Open the share sheet with a text, a link and an optional image",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := models.ShareRequest{Text: text, URL: url}

			var extra []func(*host.Options)
			if imagePath != "" {
				frame, err := loadFrame(imagePath)
				if err != nil {
					return err
				}
				rect := models.Rect{
					Width:  float64(frame.Bounds().Dx()),
					Height: float64(frame.Bounds().Dy()),
				}
				if region != "" {
					if rect, err = parseRegion(region); err != nil {
						return err
					}
				}
				fb := capture.NewFramebuffer(capture.DefaultQuality)
				fb.SetFrame(frame)
				extra = append(extra, func(o *host.Options) { o.Capturer = fb })
				req.AttachImage = true
				req.Region = rect
			}

			h, err := g.newHost(cmd, extra...)
			if err != nil {
				return err
			}
			defer h.Close()

			out := cmd.OutOrStdout()
			finished := false
			req.OnFinished = func(destination string, completed bool) {
				finished = true
				fmt.Fprintf(out, "destination: %s\ncompleted:   %t\n", destination, completed)
			}
			if err := h.Services.Sharing.Share(req); err != nil {
				return err
			}
			for i := 0; i < maxShareTicks && !finished; i++ {
				h.Tick()
			}
			if !finished {
				fmt.Fprintln(out, "share sheet is still open on the native side")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to share")
	cmd.Flags().StringVar(&url, "url", "", "Link to share")
	cmd.Flags().StringVar(&imagePath, "image", "", "PNG or JPEG used as the current frame; a crop of it is attached")
	cmd.Flags().StringVar(&region, "region", "", "Region of the image to attach as x,y,w,h (default: whole image)")
	return cmd
}

func loadFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func parseRegion(s string) (models.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return models.Rect{}, fmt.Errorf("region %q must be x,y,w,h", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return models.Rect{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = f
	}
	return models.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}
