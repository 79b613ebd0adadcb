package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// errInputClosed ends the loop when the input stream is exhausted.
var errInputClosed = errors.New("input closed")

// prompter reads one line per question.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints label and returns the next line without its line ending. Lines
// may be of any length; a final line without a newline is still returned.
func (p *prompter) ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		if line == "" {
			return "", errInputClosed
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *prompter) println(a ...any) { fmt.Fprintln(p.out, a...) }

func (p *prompter) printf(format string, a ...any) { fmt.Fprintf(p.out, format, a...) }
