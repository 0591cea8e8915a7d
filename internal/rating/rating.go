package rating

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/toqueteos/webbrowser"

	"github.com/arko-chat/nativekit/internal/models"
	"github.com/arko-chat/nativekit/internal/prefs"
)

const (
	KeyState   = "RatingState"
	KeyElapsed = "TimeSinceLastAsked"
)

type State int

const (
	NotAskedYet State = iota
	Pending
	Done
	Declined
)

func (s State) String() string {
	switch s {
	case NotAskedYet:
		return "not-asked-yet"
	case Pending:
		return "pending"
	case Done:
		return "done"
	case Declined:
		return "declined"
	default:
		return "unknown"
	}
}

// Button indices of the dialog.
const (
	ButtonRate  = 0
	ButtonLater = 1
	ButtonNo    = 2
)

// Message holds the dialog texts. {app} is replaced with the app name and
// {nl} with the line break the platform supports in button titles.
type Message struct {
	Headline string
	Text     string
	Yes      string
	Later    string
	No       string
}

var DefaultMessage = Message{
	Headline: "Do you like this game?",
	Text:     "If you enjoy using {app}, would you mind taking a moment to rate it? It won't take more than a minute. Thanks for your support!",
	Yes:      "Rate{nl}{app}",
	Later:    "Remind me later",
	No:       "No, thanks",
}

type Options struct {
	AppName    string
	StoreURL   string
	FirstAfter time.Duration
	AgainAfter time.Duration
	Message    Message
	// Newline replaces {nl}. Some platforms cannot wrap button titles and
	// want a space here.
	Newline string
}

func DefaultOptions() Options {
	return Options{
		AppName:    "My cool app",
		FirstAfter: 30 * time.Minute,
		AgainAfter: 60 * time.Minute,
		Message:    DefaultMessage,
		Newline:    "\n",
	}
}

type Popup interface {
	Show(req models.PopupRequest) error
}

type Scheduler interface {
	ScheduleAfter(delay time.Duration, action func())
}

// Policy decides when to ask the user for a store rating and remembers the
// answer. Usage time is tracked in seconds and only advances while the
// process runs.
type Policy struct {
	mu         sync.Mutex
	store      prefs.Store
	popup      Popup
	scheduler  Scheduler
	opts       Options
	now        func() time.Time
	lastUpdate time.Time
	openURL    func(url string) error
	logger     *slog.Logger
}

type Option func(*Policy)

func WithClock(now func() time.Time) Option {
	return func(p *Policy) {
		p.now = now
	}
}

func WithURLOpener(open func(url string) error) Option {
	return func(p *Policy) {
		p.openURL = open
	}
}

func New(
	store prefs.Store,
	popup Popup,
	scheduler Scheduler,
	opts Options,
	logger *slog.Logger,
	options ...Option,
) *Policy {
	p := &Policy{
		store:     store,
		popup:     popup,
		scheduler: scheduler,
		opts:      opts,
		now:       time.Now,
		openURL:   webbrowser.Open,
		logger:    logger.With("component", "rating"),
	}
	for _, o := range options {
		o(p)
	}
	p.lastUpdate = p.now()
	return p
}

func (p *Policy) State() State {
	return State(prefs.IntOr(p.store, KeyState, int(NotAskedYet)))
}

func (p *Policy) setState(s State) {
	if p.State() == s {
		return
	}
	if err := p.store.SetInt(KeyState, int(s)); err != nil {
		p.logger.Error("storing rating state failed", "err", err)
	}
}

// Elapsed returns the usage time since the user was last asked and folds
// the time since the previous call into the stored total.
func (p *Policy) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	total := prefs.FloatOr(p.store, KeyElapsed, 0) + now.Sub(p.lastUpdate).Seconds()
	p.storeElapsed(total, now)
	return time.Duration(total * float64(time.Second))
}

func (p *Policy) resetElapsed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.storeElapsed(0, p.now())
}

func (p *Policy) storeElapsed(seconds float64, now time.Time) {
	if err := p.store.SetFloat(KeyElapsed, seconds); err != nil {
		p.logger.Error("storing elapsed time failed", "err", err)
	}
	p.lastUpdate = now
}

// ShouldShow is false once the user rated or declined. Otherwise it is true
// when enough usage time passed since the last time the dialog was shown.
func (p *Policy) ShouldShow() bool {
	state := p.State()
	if state == Done || state == Declined {
		return false
	}
	threshold := p.opts.AgainAfter
	if state == NotAskedYet {
		threshold = p.opts.FirstAfter
	}
	return p.Elapsed() > threshold
}

// Show opens the rating dialog after delay. Without force it does nothing
// unless ShouldShow holds. onClose runs after the answer was recorded.
func (p *Policy) Show(delay time.Duration, onClose func(), force bool) error {
	if !p.ShouldShow() && !force {
		return nil
	}

	req := p.request(onClose)
	if delay <= 0 {
		return p.popup.Show(req)
	}
	p.scheduler.ScheduleAfter(delay, func() {
		if err := p.popup.Show(req); err != nil {
			p.logger.Error("showing delayed rating dialog failed", "err", err)
		}
	})
	return nil
}

func (p *Policy) request(onClose func()) models.PopupRequest {
	m := p.opts.Message
	r := strings.NewReplacer("{app}", p.opts.AppName, "{nl}", p.opts.Newline)
	return models.PopupRequest{
		Title:   r.Replace(m.Headline),
		Message: r.Replace(m.Text),
		Buttons: []string{r.Replace(m.Yes), r.Replace(m.Later), r.Replace(m.No)},
		OnClose: func(index int) {
			p.closed(index)
			if onClose != nil {
				onClose()
			}
		},
	}
}

func (p *Policy) closed(index int) {
	switch index {
	case ButtonRate:
		p.visitStore()
		p.setState(Done)
	case ButtonNo:
		p.setState(Declined)
	default:
		p.setState(Pending)
	}
	p.resetElapsed()
	p.logger.Info("rating dialog answered", "index", index, "state", p.State())
}

func (p *Policy) visitStore() {
	if p.opts.StoreURL == "" {
		p.logger.Warn("no store url configured")
		return
	}
	if err := p.openURL(p.opts.StoreURL); err != nil {
		p.logger.Error("opening store page failed", "err", err, "url", p.opts.StoreURL)
	}
}
