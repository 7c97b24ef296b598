// Package voice defines the optional speech surface of the tutor. The
// pipeline itself is text-only; deployments with audio hardware plug a
// Capability in front of it.
package voice

import "context"

// Capability captures a student utterance as text and speaks an answer
// back. Implementations wrap platform speech services.
type Capability interface {
	CaptureUtterance(ctx context.Context) (string, error)
	Speak(ctx context.Context, text string) error
}

// Noop is the Capability used when no speech backend is configured.
// Capture yields nothing and Speak discards the text.
type Noop struct{}

var _ Capability = Noop{}

func (Noop) CaptureUtterance(ctx context.Context) (string, error) {
	return "", nil
}

func (Noop) Speak(ctx context.Context, text string) error {
	return nil
}
