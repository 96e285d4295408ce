package components

import (
	"fmt"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityAppend(t *testing.T) {
	test.NewApp()
	log := NewActivityLog(10)

	log.Append("stt_result", "hello coda")

	lines := log.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "stt_result")
	assert.Contains(t, lines[0], "hello coda")
}

func TestActivityBounded(t *testing.T) {
	test.NewApp()
	log := NewActivityLog(5)

	for i := 0; i < 12; i++ {
		log.Append("system_info", fmt.Sprintf("line %d", i))
	}

	lines := log.Lines()
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "line 7")
	assert.Contains(t, lines[4], "line 11")
}

func TestActivityClear(t *testing.T) {
	test.NewApp()
	log := NewActivityLog(10)

	log.Append("system_info", "something")
	log.Clear()

	assert.Empty(t, log.Lines())
}
