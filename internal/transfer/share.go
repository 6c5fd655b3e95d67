package transfer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
)

// CommandSharer pipes the payload to a host share command such as
// "termux-share -a send".
type CommandSharer struct {
	Name string
	Args []string
}

// ParseCommand splits a SHARE_COMMAND value. An empty value yields nil.
func ParseCommand(s string) *CommandSharer {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return &CommandSharer{Name: fields[0], Args: fields[1:]}
}

func (c *CommandSharer) CanShare(context.Context) bool {
	if c == nil || c.Name == "" {
		return false
	}
	_, err := exec.LookPath(c.Name)
	return err == nil
}

func (c *CommandSharer) Share(ctx context.Context, p Payload) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = bytes.NewReader(p.Content)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w: %s", c.Name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Sharers shares through the first target that can share.
type Sharers []Sharer

func (s Sharers) CanShare(ctx context.Context) bool {
	return s.first(ctx) != nil
}

func (s Sharers) Share(ctx context.Context, p Payload) error {
	target := s.first(ctx)
	if target == nil {
		return fmt.Errorf("share: %w", ErrUnavailable)
	}
	return target.Share(ctx, p)
}

func (s Sharers) first(ctx context.Context) Sharer {
	for _, sh := range s {
		if sh != nil && sh.CanShare(ctx) {
			return sh
		}
	}
	return nil
}

// SystemClipboard writes to the host clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteText(_ context.Context, text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard: %w", ErrUnavailable)
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}
