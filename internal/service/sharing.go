package service

import (
	"fmt"

	"github.com/arko-chat/nativekit/internal/bridge"
	"github.com/arko-chat/nativekit/internal/capture"
	"github.com/arko-chat/nativekit/internal/dispatch"
	"github.com/arko-chat/nativekit/internal/gate"
	"github.com/arko-chat/nativekit/internal/metrics"
	"github.com/arko-chat/nativekit/internal/models"
)

var ErrNoCapturer = fmt.Errorf("%w: image requested but no frame capturer is configured", ErrInvalidRequest)

// SharingService opens one share sheet at a time, optionally with a capture
// of a screen region taken once the current frame has finished rendering.
type SharingService struct {
	*BaseService

	gate     gate.Gate
	bridge   *bridge.Bridge[models.SharePayload, models.ShareResult]
	frames   *dispatch.FrameSignal
	capturer capture.FrameCapturer
}

func NewSharingService(
	base *BaseService,
	b *bridge.Bridge[models.SharePayload, models.ShareResult],
	frames *dispatch.FrameSignal,
	capturer capture.FrameCapturer,
) *SharingService {
	return &SharingService{
		BaseService: base,
		bridge:      b,
		frames:      frames,
		capturer:    capturer,
	}
}

// Share returns nil without doing anything when a share is already in
// progress. OnFinished runs on the main context.
func (s *SharingService) Share(req models.ShareRequest) error {
	if req.AttachImage && s.capturer == nil {
		s.record(metrics.OutcomeInvalid)
		return ErrNoCapturer
	}
	if !s.gate.TryAcquire() {
		s.record(metrics.OutcomeRejected)
		s.logger.Debug("share already in progress, request dropped")
		return nil
	}
	s.record(metrics.OutcomeAccepted)

	finish := func(res models.ShareResult) {
		s.gate.Release()
		s.logger.Debug("share finished", "destination", res.Destination, "completed", res.Completed)
		if req.OnFinished != nil {
			req.OnFinished(res.Destination, res.Completed)
		}
	}

	payload := models.SharePayload{Text: req.Text, URL: req.URL}
	if !req.AttachImage {
		s.bridge.Call(payload, finish)
		return nil
	}

	s.frames.AwaitEndOfFrame(func() {
		image, err := s.capturer.CaptureRegion(req.Region)
		if err != nil {
			s.logger.Error("capturing share image failed", "err", err, "region", req.Region)
			s.dispatcher.Schedule(func() {
				finish(models.ShareResult{})
			})
			return
		}
		payload.Image = image
		s.bridge.Call(payload, finish)
	})
	return nil
}

func (s *SharingService) Sharing() bool {
	return s.gate.Held()
}

func (s *SharingService) Kind() bridge.Kind {
	return s.bridge.Kind()
}
