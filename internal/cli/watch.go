package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// settle lets editors finish writing before the script is run again.
const settle = 100 * time.Millisecond

// RunWatch runs id, then runs it again after every change to the resources,
// until ctx is done. Run failures are reported and do not stop the watch.
func RunWatch(ctx context.Context, p *Project, id string, opts RunOptions, w io.Writer) error {
	events, err := p.Engine.Watch(ctx)
	if err != nil {
		return err
	}

	p.Logger.Info("Starting Watcher", "script", id)
	runOnce(ctx, p, id, opts, w)

	for {
		select {
		case <-ctx.Done():
			p.Logger.Info("Stopping watcher")
			return nil
		case changed, ok := <-events:
			if !ok {
				return nil
			}
			p.Logger.Info("Change detected, running again", "event", changed)
			printSystemMessage(w, "Change detected in '%s'.", changed)
			select {
			case <-time.After(settle):
			case <-ctx.Done():
				return nil
			}
			drain(events)
			runOnce(ctx, p, id, opts, w)
		}
	}
}

func runOnce(ctx context.Context, p *Project, id string, opts RunOptions, w io.Writer) {
	err := Execute(ctx, p, id, opts, w)
	switch {
	case err == nil:
		printSystemMessage(w, "Waiting for changes...")
	case errors.Is(err, context.Canceled):
	default:
		p.Logger.Error("Run failed", "script", id, "error", err)
		printSystemMessage(w, "Run failed: %s", Describe(err))
	}
}

// drain discards notifications that piled up during the settle delay.
func drain(events <-chan string) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
