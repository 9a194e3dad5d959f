// Package watch re-audits record files as they change on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/suykerbuyk/padroles/internal/audit"
	"github.com/suykerbuyk/padroles/internal/corpus"
)

// DefaultDebounce is how long a file must stay quiet before it is audited.
const DefaultDebounce = 300 * time.Millisecond

// Watcher audits records under a corpus root whenever they are written.
type Watcher struct {
	cc       corpus.Context
	debounce time.Duration
	onResult func(audit.Result)
	pending  map[string]time.Time
}

// New returns a Watcher that passes every fresh audit result to onResult.
// onResult is called from the Run goroutine only.
func New(cc corpus.Context, debounce time.Duration, onResult func(audit.Result)) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if onResult == nil {
		onResult = func(audit.Result) {}
	}
	return &Watcher{
		cc:       cc,
		debounce: debounce,
		onResult: onResult,
		pending:  make(map[string]time.Time),
	}
}

// Run watches until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.cc.Root); err != nil {
		return fmt.Errorf("watch %s: %w", w.cc.Root, err)
	}
	log := w.cc.Log()
	log.Info("watching corpus", zap.String("root", w.cc.Root))

	tick := time.NewTicker(w.debounce / 3)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))

		case now := <-tick.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !w.cc.IsRecordName(filepath.Base(ev.Name)) {
		return
	}
	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.pending[ev.Name] = time.Now()
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		delete(w.pending, ev.Name)
		w.cc.Log().Debug("record removed", zap.String("file", filepath.Base(ev.Name)))
	}
}

func (w *Watcher) flush(now time.Time) {
	for path, last := range w.pending {
		if now.Sub(last) < w.debounce {
			continue
		}
		delete(w.pending, path)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		res := audit.CheckFile(w.cc, path)
		if res.Err != nil {
			w.cc.Log().Warn("record unreadable", zap.String("file", res.File), zap.Error(res.Err))
		} else {
			w.cc.Log().Info("record audited",
				zap.String("file", res.File),
				zap.String("outcome", string(res.Outcome)),
				zap.String("detail", res.Detail),
			)
		}
		w.onResult(res)
	}
}
