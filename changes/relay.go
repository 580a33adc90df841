package changes

import (
	"context"
	"log"
)

// Relay decodes payloads from in, keeps those matching f, and forwards them on
// the returned channel. The returned channel is closed when in closes or ctx is done.
func Relay[M any](ctx context.Context, in <-chan M, payload func(M) string, f Filter) <-chan Changes {
	out := make(chan Changes, defaultBuffer)
	go func() {
		defer close(out)
		for {
			var msg M
			var ok bool
			select {
			case msg, ok = <-in:
				if !ok {
					return
				}
			case <-ctx.Done():
				return
			}
			c, err := Decode(payload(msg))
			if err != nil {
				log.Printf("[WARN] dropping change payload: %v", err)
				continue
			}
			if !f.Match(c) {
				continue
			}
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
