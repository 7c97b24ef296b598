package voice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopCapability(t *testing.T) {
	ctx := context.Background()
	var c Capability = Noop{}

	text, err := c.CaptureUtterance(ctx)
	assert.NoError(t, err)
	assert.Empty(t, text)

	assert.NoError(t, c.Speak(ctx, "any answer"))
}
