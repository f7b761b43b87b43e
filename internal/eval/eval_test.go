package eval

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kodit/internal/lexspec"
)

func runProgram(t *testing.T, src, stdin string) string {
	t.Helper()
	lines, err := Compile(strings.NewReader(src), lexspec.NewRegistry(lexspec.Default()))
	require.NoError(t, err, "compile failed")
	var out bytes.Buffer
	m, err := New("test.kdt", lines, WithIO(&out, strings.NewReader(stdin)))
	require.NoError(t, err, "machine setup failed")
	require.NoError(t, m.Run(), "run failed")
	return out.String()
}

func TestS1Hello(t *testing.T) {
	got := runProgram(t, `say "Hello, World!\n"`, "")
	assert.Equal(t, "Hello, World!\n", got)
}

func TestS2ArithmeticAndVariables(t *testing.T) {
	src := "set x 2\nset y 3\nsum x + y\nsay @save\nsay \"\\n\"\n"
	got := runProgram(t, src, "")
	assert.Equal(t, "5\n", got)
}

func TestS3FunctionCall(t *testing.T) {
	src := `call double 4
say @save
say "\n"
goto end
function double n
sum n + n
return @save
label end
noop
`
	got := runProgram(t, src, "")
	assert.Equal(t, "8\n", got)
}

func TestS4ForLoopCounting(t *testing.T) {
	src := `set i 0
for loop done i 3
say i
continue loop
label done
say "\n"
`
	got := runProgram(t, src, "")
	assert.Equal(t, "012\n", got)
}

func TestS4NestedForLoops(t *testing.T) {
	src := `set i 0
for outer outerdone i 2
set j 0
for inner innerdone j 2
say j
continue inner
label innerdone
continue outer
label outerdone
say "\n"
`
	got := runProgram(t, src, "")
	assert.Equal(t, "0101\n", got)
}

func TestS5TablesAndSlice(t *testing.T) {
	src := `table t 2 2
put t 0 0 10
put t 0 1 20
put t 1 0 30
put t 1 1 40
slice t 1 0
get @save 0 1
say @save
say "\n"
`
	got := runProgram(t, src, "")
	assert.Equal(t, "40\n", got)
}

func TestTableLiteralMaterializesOnSet(t *testing.T) {
	src := `set grid [2 2] [1 2 3 4]
get grid 1 0
say @save
say "\n"
`
	got := runProgram(t, src, "")
	assert.Equal(t, "3\n", got)
}

func TestS6GCPreservesReachableTables(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&sb, "table keep %d\nput keep 0 %d\n", 1, i)
	}
	sb.WriteString("get keep 0\nsay @save\n")
	got := runProgram(t, sb.String(), "")
	assert.Equal(t, "24", got, "expected the last-written value to survive GC")
}

func TestAskReadsStdinAndStripsNewline(t *testing.T) {
	got := runProgram(t, "ask \"name? \"\nsay @save\n", "Ada\n")
	assert.Equal(t, "name? Ada", got)
}

func TestRootReturnIsFatal(t *testing.T) {
	lines, err := Compile(strings.NewReader("return\n"), lexspec.NewRegistry(lexspec.Default()))
	require.NoError(t, err, "compile failed")
	m, _ := New("t.kdt", lines)
	assert.Error(t, m.Run(), "expected RootReturn error")
}

func TestSayTableIsFatal(t *testing.T) {
	err := compileAndRunExpectErr(t, "table t 1\nsay t\n")
	assert.Error(t, err, "expected SayTable error")
}

func TestUnboundVariableIsRecoverable(t *testing.T) {
	err := compileAndRunExpectErr(t, "say missing\n")
	assert.Error(t, err, "expected Unbound error")
}

func compileAndRunExpectErr(t *testing.T, src string) error {
	t.Helper()
	lines, err := Compile(strings.NewReader(src), lexspec.NewRegistry(lexspec.Default()))
	if err != nil {
		return err
	}
	m, err := New("t.kdt", lines)
	if err != nil {
		return err
	}
	return m.Run()
}

func TestCallReturnRestoresFrameHeight(t *testing.T) {
	src := `call noop_fn
say "done"
goto end
function noop_fn
return
label end
noop
`
	lines, err := Compile(strings.NewReader(src), lexspec.NewRegistry(lexspec.Default()))
	require.NoError(t, err, "compile failed")
	m, _ := New("t.kdt", lines)
	before := m.Frames.Depth()
	require.NoError(t, m.Run(), "run failed")
	assert.Equal(t, before, m.Frames.Depth(), "frame height changed")
}
