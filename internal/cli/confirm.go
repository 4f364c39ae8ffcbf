package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/aidanlsb/roadmap/internal/ui"
)

var (
	stdinOnce   sync.Once
	stdinReader *bufio.Reader
)

func shouldPromptForConfirm() bool {
	if isJSONOutput() {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
}

// promptForConfirm asks a yes/no question on the terminal. It answers no
// without asking when stdin or stdout is not a terminal.
func promptForConfirm(message string) bool {
	if !shouldPromptForConfirm() {
		return false
	}
	if message == "" {
		message = "Apply changes?"
	}
	fmt.Printf("%s %s ", message, ui.Hint("[y/N]"))
	return readYes()
}

// readYes reads one answer. The reader is shared so that buffered input
// survives across several prompts in one command.
func readYes() bool {
	stdinOnce.Do(func() { stdinReader = bufio.NewReader(os.Stdin) })
	response, _ := stdinReader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
