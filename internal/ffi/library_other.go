//go:build !darwin && !linux

package ffi

import (
	"log/slog"

	"github.com/arko-chat/nativekit/internal/bridge"
)

type Library struct{}

func Load(string, *slog.Logger) (*Library, error) {
	return nil, ErrUnsupported
}

func (*Library) HasPopup() bool   { return false }
func (*Library) HasNetwork() bool { return false }
func (*Library) HasSharing() bool { return false }

func (*Library) RegisterInto(*bridge.Registry) error { return nil }

func (*Library) Close() error { return nil }
