package iocli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Stdio пишет в out и читает строки из in.
type Stdio struct {
	in  io.Reader
	out io.Writer
}

func NewStdio() IO {
	return &Stdio{in: os.Stdin, out: os.Stdout}
}

// NewStdioWith использует заданные потоки, например cmd.InOrStdin/OutOrStdout.
func NewStdioWith(in io.Reader, out io.Writer) IO {
	return &Stdio{in: in, out: out}
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	reader := bufio.NewReader(s.in)
	input, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
