package debugger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kodit/internal/eval"
	"kodit/internal/lexspec"
)

func compileMachine(t *testing.T, src string) *eval.Machine {
	t.Helper()
	lines, err := eval.Compile(strings.NewReader(src), lexspec.NewRegistry(lexspec.Default()))
	require.NoError(t, err, "compile failed")
	m, err := eval.New("t.kdt", lines)
	require.NoError(t, err, "machine setup failed")
	return m
}

func TestStepAdvancesOneLineAtATime(t *testing.T) {
	m := compileMachine(t, "set x 1\nset y 2\nset z 3\n")
	d := New(m)
	require.NoError(t, d.Step(), "step failed")
	assert.Equal(t, 1, m.PC)
}

func TestBreakpointStopsContinue(t *testing.T) {
	m := compileMachine(t, "set x 1\nset y 2\nset z 3\n")
	d := New(m)
	d.Break(1)
	require.NoError(t, d.Continue(), "continue failed")
	assert.Equal(t, 1, m.PC, "should stop at breakpoint")
	assert.False(t, d.Halted, "should not be halted at a breakpoint")
}

func TestContinueRunsToCompletion(t *testing.T) {
	m := compileMachine(t, "set x 1\nset y 2\n")
	d := New(m)
	require.NoError(t, d.Continue(), "continue failed")
	assert.True(t, d.Halted, "expected machine to halt after running off the end")
}
