// Package filewatch cancels contexts when configuration files change.
package filewatch

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// UntilModifyContext returns a context which is canceled
// when one of target files is modified (written, created, removed or renamed).
//
// Empty paths are ignored, so optional files can be passed as they are.
//
// # Args
//
// - ctx: parent context.
//
// - targetFilePath ...string: files (or directories) to be watched.
//
// # Returns
//
// - context.Context: context canceled when a target is modified.
// Its cause names the file and the operation.
//
// - func(): cancel function.
//
// - error: when it fails to start watching.
// If error is not nil, both of the context and the cancel function are nil.
func UntilModifyContext(ctx context.Context, targetFilePath ...string) (context.Context, func(), error) {
	cctx, cancel := context.WithCancelCause(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		cancel(err)
		return nil, nil, err
	}

	for _, f := range targetFilePath {
		if f == "" {
			continue
		}
		if err := w.Add(f); err != nil {
			w.Close()
			cancel(err)
			return nil, nil, err
		}
	}

	go func() {
		defer w.Close()

		for {
			select {
			case <-cctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				cancel(fmt.Errorf("%s is updated (%s)", event.Name, event.Op.String()))
			}
		}
	}()

	return cctx, func() { cancel(nil) }, nil
}
