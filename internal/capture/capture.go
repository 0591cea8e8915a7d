package capture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"math"
	"sync"

	"github.com/arko-chat/nativekit/internal/models"
)

const DefaultQuality = 75

var (
	ErrNoFrame     = errors.New("capture: no frame available")
	ErrEmptyRegion = errors.New("capture: region does not intersect the frame")
)

// FrameCapturer turns a screen region of the current frame into encoded
// image bytes. It is called on the main context right after a frame ended.
type FrameCapturer interface {
	CaptureRegion(region models.Rect) ([]byte, error)
}

type FrameCapturerFunc func(region models.Rect) ([]byte, error)

func (f FrameCapturerFunc) CaptureRegion(region models.Rect) ([]byte, error) {
	return f(region)
}

// Framebuffer keeps the last frame the host rendered and encodes crops of it
// as JPEG.
type Framebuffer struct {
	mu      sync.RWMutex
	frame   image.Image
	quality int
}

func NewFramebuffer(quality int) *Framebuffer {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Framebuffer{quality: quality}
}

func (f *Framebuffer) SetFrame(img image.Image) {
	f.mu.Lock()
	f.frame = img
	f.mu.Unlock()
}

func (f *Framebuffer) CaptureRegion(region models.Rect) ([]byte, error) {
	f.mu.RLock()
	frame := f.frame
	f.mu.RUnlock()
	if frame == nil {
		return nil, ErrNoFrame
	}

	bounds := frame.Bounds()
	rect := image.Rect(
		bounds.Min.X+int(math.Floor(region.X)),
		bounds.Min.Y+int(math.Floor(region.Y)),
		bounds.Min.X+int(math.Ceil(region.X+region.Width)),
		bounds.Min.Y+int(math.Ceil(region.Y+region.Height)),
	).Intersect(bounds)
	if rect.Empty() {
		return nil, ErrEmptyRegion
	}

	crop := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(crop, crop.Bounds(), frame, rect.Min, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, crop, &jpeg.Options{Quality: f.quality}); err != nil {
		return nil, fmt.Errorf("capture: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
