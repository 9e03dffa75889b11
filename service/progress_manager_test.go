package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressManager_NonInteractiveWriter(t *testing.T) {
	pm := NewProgressManager().(*ProgressManagerImpl)
	var buf bytes.Buffer
	pm.SetWriter(&buf)
	assert.False(t, pm.IsInteractive())

	pm.Initialize(LoadPhases)
	pm.Start("Loading sectors")
	pm.Advance(1)
	pm.Advance(2)
	pm.Complete(true)
	pm.Close()

	assert.Equal(t, 3, pm.done)
	assert.Nil(t, pm.progressBar)
	assert.Empty(t, buf.String())
}

func TestProgressManager_DrawsWhenInteractive(t *testing.T) {
	var buf bytes.Buffer
	pm := &ProgressManagerImpl{writer: &buf, interactive: true}

	pm.Initialize(2)
	pm.Start("Loading themes")
	pm.Advance(2)
	pm.Complete(true)

	assert.Contains(t, buf.String(), "Loading themes")
	assert.Nil(t, pm.progressBar)
}

func TestNoopProgressManager(t *testing.T) {
	pm := NewNoopProgressManager()
	pm.Initialize(3)
	pm.Start("ignored")
	pm.Advance(3)
	pm.Complete(false)
	pm.Close()
	assert.False(t, pm.IsInteractive())
}
