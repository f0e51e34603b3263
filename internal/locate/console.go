// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package locate

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/flashcard-engine/pkg/types"
)

// ConsoleSelector prompts on Out and reads one line from In.
type ConsoleSelector struct {
	In  io.Reader
	Out io.Writer
}

// Select prints a prompt and returns the next input line. End of input
// yields an empty choice, which Locate rejects.
func (c ConsoleSelector) Select(candidates []types.Document) (string, error) {
	fmt.Fprintf(c.Out, "Select a document [1-%d]: ", len(candidates))

	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
