package fallback

import (
	"log/slog"
	"sync"

	"github.com/arko-chat/nativekit/internal/bridge"
	"github.com/arko-chat/nativekit/internal/models"
)

// Screen is the drawable area the simulated dialog is laid out in.
type Screen struct {
	Width  float64
	Height float64
}

type Layout struct {
	Box      models.Rect
	TitleBar models.Rect
	Buttons  []models.Rect
}

// ComputeLayout places the dialog box at 10% from the left and 20% from the
// top of the screen, 80% wide and 60% tall. The title bar and the button row
// are each a tenth of the screen height; buttons share the width evenly.
func ComputeLayout(screen Screen, buttonCount int) Layout {
	box := models.Rect{
		X:      screen.Width * 0.1,
		Y:      screen.Height * 0.2,
		Width:  screen.Width * 0.8,
		Height: screen.Height * 0.6,
	}
	rowHeight := screen.Height * 0.1

	l := Layout{
		Box:      box,
		TitleBar: models.Rect{X: box.X, Y: box.Y, Width: box.Width, Height: rowHeight},
	}
	if buttonCount <= 0 {
		return l
	}

	buttonWidth := box.Width / float64(buttonCount)
	buttonTop := box.Y + box.Height - rowHeight
	l.Buttons = make([]models.Rect, buttonCount)
	for i := range l.Buttons {
		l.Buttons[i] = models.Rect{
			X:      box.X + float64(i)*buttonWidth,
			Y:      buttonTop,
			Width:  buttonWidth,
			Height: rowHeight,
		}
	}
	return l
}

// HitTest returns the index of the button containing (x, y).
func (l Layout) HitTest(x, y float64) (int, bool) {
	for i, r := range l.Buttons {
		if r.Contains(x, y) {
			return i, true
		}
	}
	return 0, false
}

// Dialog is a snapshot of the visible simulated popup.
type Dialog struct {
	Title   string
	Message string
	Buttons []string
	Layout  Layout
}

// Popup simulates the native modal dialog. It implements
// bridge.PopupBackend; the host renders Active() and feeds input back through
// Click, ClickAt or Dismiss.
type Popup struct {
	mu       sync.Mutex
	screen   Screen
	active   *Dialog
	callback bridge.PopupCallback
	onChange func(d *Dialog)
	logger   *slog.Logger
}

type PopupOption func(*Popup)

// OnChange is called, outside the lock, whenever a dialog appears or goes
// away. d is nil once the dialog closed.
func OnChange(fn func(d *Dialog)) PopupOption {
	return func(p *Popup) {
		p.onChange = fn
	}
}

func NewPopup(screen Screen, logger *slog.Logger, opts ...PopupOption) *Popup {
	p := &Popup{
		screen: screen,
		logger: logger.With("fallback", "popup"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Popup) ShowPopup(
	title string,
	message string,
	buttonTitles string,
	buttonCount int,
	callback bridge.PopupCallback,
) {
	d := &Dialog{
		Title:   title,
		Message: message,
		Buttons: bridge.SplitButtons(buttonTitles, buttonCount),
		Layout:  ComputeLayout(p.screen, buttonCount),
	}

	p.mu.Lock()
	if p.active != nil {
		p.mu.Unlock()
		p.logger.Warn("popup already visible, request ignored", "title", title)
		return
	}
	p.active = d
	p.callback = callback
	p.mu.Unlock()

	p.logger.Debug("showing simulated popup", "title", title, "buttons", buttonCount)
	p.changed(d)
}

// Resize changes the screen used for layouts, including the visible dialog.
func (p *Popup) Resize(screen Screen) {
	p.mu.Lock()
	p.screen = screen
	d := p.active
	if d != nil {
		d.Layout = ComputeLayout(screen, len(d.Buttons))
	}
	p.mu.Unlock()

	if d != nil {
		p.changed(d)
	}
}

func (p *Popup) Active() (Dialog, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil {
		return Dialog{}, false
	}
	return *p.active, true
}

// Click presses button i. It reports false when no dialog is visible or i is
// out of range.
func (p *Popup) Click(i int) bool {
	p.mu.Lock()
	if p.active == nil || i < 0 || i >= len(p.active.Buttons) {
		p.mu.Unlock()
		return false
	}
	p.mu.Unlock()
	return p.close(i)
}

func (p *Popup) ClickAt(x, y float64) bool {
	p.mu.Lock()
	if p.active == nil {
		p.mu.Unlock()
		return false
	}
	i, ok := p.active.Layout.HitTest(x, y)
	p.mu.Unlock()
	if !ok {
		return false
	}
	return p.close(i)
}

// Dismiss closes the dialog without a choice.
func (p *Popup) Dismiss() bool {
	return p.close(models.Dismissed)
}

func (p *Popup) close(index int) bool {
	p.mu.Lock()
	if p.active == nil {
		p.mu.Unlock()
		return false
	}
	cb := p.callback
	p.active = nil
	p.callback = nil
	p.mu.Unlock()

	p.changed(nil)
	if cb != nil {
		cb.PopupClosed(index)
	}
	return true
}

func (p *Popup) changed(d *Dialog) {
	if p.onChange != nil {
		p.onChange(d)
	}
}
