package decomposer

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"kodit/internal/kerr"
)

var operatorGlyphs = map[string]bool{
	"+": true, "==": true, "-": true, "*": true, "/": true,
	"%": true, "<": true, ">": true, "<=": true, ">=": true,
}

// rawToken is a single whitespace-delimited word or quoted string
// pulled off a physical line, before bracket stripping.
type rawToken struct {
	text     string
	isString bool
}

// scanTokens splits one physical line into raw tokens, honoring quoted
// strings and `//` line comments. A `//` word ends the scan and the rest
// of the line is dropped; an unterminated string yields an
// UnclosedString error.
func scanTokens(line string) ([]rawToken, error) {
	var tokens []rawToken
	i := 0
	n := len(line)
	for i < n {
		for i < n && (line[i] == ' ' || line[i] == '\t' || line[i] == '\r') {
			i++
		}
		if i >= n {
			break
		}
		if line[i] == '"' {
			start := i
			i++
			var sb strings.Builder
			closed := false
			for i < n {
				if line[i] == '\\' && i+1 < n {
					sb.WriteByte(line[i])
					sb.WriteByte(line[i+1])
					i += 2
					continue
				}
				if line[i] == '"' {
					closed = true
					i++
					break
				}
				sb.WriteByte(line[i])
				i++
			}
			if !closed {
				return nil, kerr.New(kerr.UnclosedString, 0, "unterminated string literal: "+line[start:])
			}
			tokens = append(tokens, rawToken{text: unescape(sb.String()), isString: true})
			continue
		}

		start := i
		for i < n && line[i] != ' ' && line[i] != '\t' && line[i] != '\r' && line[i] != '"' {
			i++
		}
		word := line[start:i]
		if strings.HasPrefix(word, "//") {
			break
		}
		tokens = append(tokens, rawToken{text: word})
	}
	return tokens, nil
}

// splitBrackets peels leading '[' and trailing ']' runs off a raw word
// token, returning the number of opens, the number of closes, and the
// atom text remaining in the middle (possibly empty).
func splitBrackets(word string) (opens int, atom string, closes int) {
	i := 0
	for i < len(word) && word[i] == '[' {
		opens++
		i++
	}
	j := len(word)
	for j > i && word[j-1] == ']' {
		closes++
		j--
	}
	atom = word[i:j]
	return
}

func classifyAtom(atom string, isString, isFirst bool) Item {
	if isString {
		return Item{Kind: ItemString, Text: atom}
	}
	if isFirst {
		return Item{Kind: ItemCommand, Op: lookupCommand(atom)}
	}
	if !operatorGlyphs[atom] {
		if n, err := strconv.ParseFloat(atom, 64); err == nil {
			return Item{Kind: ItemNumber, Num: n}
		}
	}
	return Item{Kind: ItemLabel, Text: atom}
}

func lookupCommand(name string) Command {
	if cmd, ok := commandNames[strings.ToLower(name)]; ok {
		return cmd
	}
	return CmdNoop
}

// lineBuilder accumulates items for one logical line across physical
// lines, tracking open-array nesting.
type lineBuilder struct {
	stack      [][]Item // one slice per currently-open array
	top        []Item   // items at depth 0
	sawCommand bool
}

func newLineBuilder() *lineBuilder {
	return &lineBuilder{}
}

func (b *lineBuilder) depth() int { return len(b.stack) }

func (b *lineBuilder) append(it Item) {
	if len(b.stack) == 0 {
		b.top = append(b.top, it)
		return
	}
	last := len(b.stack) - 1
	b.stack[last] = append(b.stack[last], it)
}

func (b *lineBuilder) open() {
	b.stack = append(b.stack, nil)
}

func (b *lineBuilder) close() error {
	if len(b.stack) == 0 {
		return kerr.New(kerr.UnclosedBracket, 0, "unexpected closing bracket")
	}
	last := len(b.stack) - 1
	items := b.stack[last]
	b.stack = b.stack[:last]
	b.append(Item{Kind: ItemArray, Items: items})
	return nil
}

func (b *lineBuilder) feed(tok rawToken) error {
	if tok.isString {
		b.append(classifyAtom(tok.text, true, false))
		return nil
	}
	opens, atom, closes := splitBrackets(tok.text)
	for k := 0; k < opens; k++ {
		b.open()
	}
	if atom != "" {
		isFirst := !b.sawCommand
		b.append(classifyAtom(atom, false, isFirst))
		if isFirst {
			b.sawCommand = true
		}
	}
	for k := 0; k < closes; k++ {
		if err := b.close(); err != nil {
			return err
		}
	}
	return nil
}

// Decomposer turns raw source text into a finite, forward-only sequence
// of canonical Lines. It is not restartable: once exhausted, create a
// new Decomposer to re-scan.
type Decomposer struct {
	scan       *bufio.Scanner
	physicalNo int
	done       bool
}

// New wraps a reader of UTF-8, newline-separated source text.
func New(r io.Reader) *Decomposer {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Decomposer{scan: s}
}

// Next returns the next canonical Line, io.EOF when the source is
// exhausted, or a Parse-kind *kerr.Error.
func (d *Decomposer) Next() (Line, error) {
	if d.done {
		return Line{}, io.EOF
	}

	b := newLineBuilder()
	startLine := 0

	for {
		if !d.scan.Scan() {
			d.done = true
			if err := d.scan.Err(); err != nil {
				return Line{}, err
			}
			if startLine == 0 {
				return Line{}, io.EOF
			}
			if b.depth() > 0 {
				return Line{}, kerr.New(kerr.UnclosedBracket, startLine, "unclosed bracket at end of input")
			}
			break
		}
		d.physicalNo++
		if startLine == 0 {
			startLine = d.physicalNo
		}

		tokens, err := scanTokens(d.scan.Text())
		if err != nil {
			if ke, ok := err.(*kerr.Error); ok {
				ke.Line = startLine
			}
			return Line{}, err
		}
		for _, tok := range tokens {
			if err := b.feed(tok); err != nil {
				if ke, ok := err.(*kerr.Error); ok {
					ke.Line = startLine
				}
				return Line{}, err
			}
		}

		if b.depth() == 0 {
			break
		}
	}

	if len(b.top) == 0 {
		// Blank or comment-only physical line: synthesize a NOOP so the
		// invariant "items[0] is a Command" still holds after rewrite.
		b.top = []Item{{Kind: ItemCommand, Op: CmdNoop}}
	}

	items, err := rewriteArrays(b.top)
	if err != nil {
		if ke, ok := err.(*kerr.Error); ok {
			ke.Line = startLine
		}
		return Line{}, err
	}

	return Line{LineNumber: startLine, Items: items}, nil
}

// All drains the Decomposer into a slice, for callers (the evaluator's
// label-scan pass) that need random access to the whole program.
func All(r io.Reader) ([]Line, error) {
	d := New(r)
	var lines []Line
	for {
		ln, err := d.Next()
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, ln)
	}
}
