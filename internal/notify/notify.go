package notify

import "context"

// Notifier delivers a verdict-transition announcement to one channel.
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi fans a message out to several channels. Nil entries are
// skipped; the first delivery error is returned after all channels
// have been attempted.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var firstErr error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, title, text); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
