package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// terminalConfirmer asks yes/no questions on the terminal. Without a
// terminal on stdin it only accepts when assumeYes is set.
type terminalConfirmer struct {
	in         io.Reader
	out        io.Writer
	assumeYes  bool
	isTerminal func() bool
}

func newTerminalConfirmer(in io.Reader, out io.Writer, assumeYes bool) *terminalConfirmer {
	return &terminalConfirmer{
		in:        in,
		out:       out,
		assumeYes: assumeYes,
		isTerminal: func() bool {
			f, ok := in.(*os.File)
			if !ok {
				return false
			}
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		},
	}
}

// Confirm implements controller.Confirmer
func (c *terminalConfirmer) Confirm(ctx context.Context, prompt string) bool {
	if c.assumeYes {
		return true
	}
	if !c.isTerminal() {
		fmt.Fprintln(c.out, "stdin is not a terminal; pass --yes to confirm")
		return false
	}

	fmt.Fprintf(c.out, "%s (y/N): ", prompt)

	answer := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(c.in).ReadString('\n')
		answer <- line
	}()

	select {
	case <-ctx.Done():
		return false
	case line := <-answer:
		response := strings.TrimSpace(strings.ToLower(line))
		return response == "y" || response == "yes"
	}
}

// cliNavigator records navigation requests so a command can turn them into
// an exit status
type cliNavigator struct {
	notFound bool
}

func (n *cliNavigator) NotFound() {
	n.notFound = true
}

func (n *cliNavigator) LeaveEditing() {}
