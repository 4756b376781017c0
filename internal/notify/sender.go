// Package notify delivers verification codes out of band.
package notify

import "context"

// Sender delivers a verification code to an address. Any returned error means
// the code did not leave the process.
type Sender interface {
	SendCode(ctx context.Context, address, code string) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, address, code string) error

func (f SenderFunc) SendCode(ctx context.Context, address, code string) error {
	return f(ctx, address, code)
}
