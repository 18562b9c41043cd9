package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"

	"github.com/room4-2/basslink/bridge"
	"github.com/room4-2/basslink/link"
	"github.com/room4-2/basslink/messages"
)

const pollInterval = 2 * time.Millisecond

// awaitSnapshot polls l until a whole patch arrives.
func awaitSnapshot(ctx context.Context, l *link.Link) (messages.Patch, error) {
	for {
		msg, err := l.TryRecv()
		switch {
		case err == nil:
			if p, ok := messages.DecodePatch(msg); ok {
				return p, nil
			}
			continue
		case !errors.Is(err, bridge.ErrWouldBlock):
			return messages.Patch{}, err
		}

		select {
		case <-ctx.Done():
			return messages.Patch{}, fmt.Errorf("no snapshot from engine: %w", ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

// sendWhenReady retries msg while the link's send buffer is full.
func sendWhenReady(ctx context.Context, l *link.Link, msg []byte) error {
	for {
		err := l.TrySend(msg)
		if !errors.Is(err, bridge.ErrWouldBlock) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func printPatch(w io.Writer, p messages.Patch) error {
	out, err := sonic.ConfigStd.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal patch: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
