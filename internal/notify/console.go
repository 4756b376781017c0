package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// ConsoleSender prints codes to w instead of mailing them. It is meant for
// local development and demos.
type ConsoleSender struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleSender(w io.Writer) *ConsoleSender {
	return &ConsoleSender{w: w}
}

func (c *ConsoleSender) SendCode(_ context.Context, address, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.w, "[mail to %s] verification code: %s\n", address, code); err != nil {
		return fmt.Errorf("console send: %w", err)
	}
	return nil
}
