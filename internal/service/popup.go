package service

import (
	"errors"
	"fmt"

	"github.com/arko-chat/nativekit/internal/bridge"
	"github.com/arko-chat/nativekit/internal/gate"
	"github.com/arko-chat/nativekit/internal/metrics"
	"github.com/arko-chat/nativekit/internal/models"
)

var (
	ErrInvalidRequest = errors.New("service: invalid request")
	ErrNoButtons      = fmt.Errorf("%w: popup needs at least one button", ErrInvalidRequest)
	ErrTooManyButtons = fmt.Errorf("%w: popup supports at most %d buttons", ErrInvalidRequest, models.MaxPopupButtons)
)

// PopupService shows at most one modal dialog at a time. A request made
// while a dialog is showing is dropped.
type PopupService struct {
	*BaseService

	gate   gate.Gate
	bridge *bridge.Bridge[models.PopupRequest, int]
}

func NewPopupService(base *BaseService, b *bridge.Bridge[models.PopupRequest, int]) *PopupService {
	return &PopupService{
		BaseService: base,
		bridge:      b,
	}
}

func ValidatePopup(req models.PopupRequest) error {
	switch n := len(req.Buttons); {
	case n == 0:
		return ErrNoButtons
	case n > models.MaxPopupButtons:
		return fmt.Errorf("%w (got %d)", ErrTooManyButtons, n)
	}
	return nil
}

// Show validates req and hands it to the backend. OnClose runs on the main
// context with the pressed button index or models.Dismissed. It returns nil
// without doing anything when another dialog is showing.
func (s *PopupService) Show(req models.PopupRequest) error {
	if err := ValidatePopup(req); err != nil {
		s.record(metrics.OutcomeInvalid)
		return err
	}
	if !s.gate.TryAcquire() {
		s.record(metrics.OutcomeRejected)
		s.logger.Debug("popup already showing, request dropped", "title", req.Title)
		return nil
	}
	s.record(metrics.OutcomeAccepted)

	s.bridge.Call(req, func(index int) {
		s.gate.Release()
		s.logger.Debug("popup closed", "title", req.Title, "index", index)
		if req.OnClose != nil {
			req.OnClose(index)
		}
	})
	return nil
}

func (s *PopupService) Showing() bool {
	return s.gate.Held()
}

func (s *PopupService) Kind() bridge.Kind {
	return s.bridge.Kind()
}
