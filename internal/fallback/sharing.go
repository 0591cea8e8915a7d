package fallback

import (
	"log/slog"

	"github.com/arko-chat/nativekit/internal/bridge"
)

// EditorDestination is what the simulated share sheet reports.
const EditorDestination = "editor"

type Sharing struct {
	logger *slog.Logger
}

func NewSharing(logger *slog.Logger) *Sharing {
	return &Sharing{logger: logger.With("fallback", "sharing")}
}

func (s *Sharing) Share(
	text string,
	url string,
	_ []byte,
	imageSize int,
	callback bridge.SharingCallback,
) {
	s.logger.Info("sharing", "text", text, "url", url, "image_size", imageSize)
	s.logger.Warn("sharing is only supported with a native backend")
	if callback != nil {
		callback.SharingFinished(EditorDestination, false)
	}
}
