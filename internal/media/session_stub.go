//go:build !linux

package media

import (
	"errors"

	"github.com/rs/zerolog"
)

// NewSession creates a new platform-specific media session
// This is the fallback for platforms without MPRIS
func NewSession(logger zerolog.Logger) (Session, error) {
	return nil, errors.New("media session not supported on this platform")
}
