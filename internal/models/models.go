package models

// Dismissed is reported to popup continuations when the dialog closed
// without any button being pressed.
const Dismissed = -1

const MaxPopupButtons = 3

type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

type PopupRequest struct {
	Title   string
	Message string
	Buttons []string
	OnClose func(index int)
}

type ShareRequest struct {
	Text        string
	URL         string
	AttachImage bool
	Region      Rect
	OnFinished  func(destination string, completed bool)
}

// ShareResult is what a sharing backend reports once the share sheet closes.
type ShareResult struct {
	Destination string
	Completed   bool
}

// SharePayload is handed to the sharing backend. Image is empty when no
// capture was requested.
type SharePayload struct {
	Text  string
	URL   string
	Image []byte
}
