package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-cfextrato/internal/fileutil"
)

// Watch tuning.
const (
	watchQueueSize     = 64
	defaultStableTries = 10
	defaultStableDelay = 200 * time.Millisecond
)

// runWatchCmd parses flags and runs the watch command.
func runWatchCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseWatchFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	return runWatch(ctx, positional, flags, env)
}

// runWatch renders every .xml file dropped into a directory until ctx is done.
func runWatch(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	cfg, err := prepare(flags, env)
	if err != nil {
		return err
	}

	switch len(positionalArgs) {
	case 0:
		return fmt.Errorf("%w: usage: cfextrato watch <dir>", ErrNoInput)
	case 1:
	default:
		return fmt.Errorf("%w: watch takes one directory, got %d", ErrUsage, len(positionalArgs))
	}
	dir := positionalArgs[0]

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watching: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrUsage, dir)
	}

	params, err := buildParams(cfg)
	if err != nil {
		return err
	}

	opts, err := converterOptions(cfg)
	if err != nil {
		return err
	}

	pool, err := newPool(ctx, poolConfig{workers: cfg.Workers, opts: opts})
	if err != nil {
		return err
	}
	defer closePool(pool, env.Logger)

	w := newDropWatcher(dir, &poolAdapter{pool: pool}, params, env.Logger)

	var printMu sync.Mutex
	w.onResult = func(r ConversionResult) {
		printMu.Lock()
		defer printMu.Unlock()
		reportResults([]ConversionResult{r}, flags.common.quiet, flags.common.verbose, env)
	}

	return w.Run(ctx, flags.existing)
}

// dropWatcher converts receipts as they land in a directory.
// Each file is handled as one job with its own ID in the logs.
type dropWatcher struct {
	dir    string
	pool   Pool
	params *conversionParams
	log    logrus.FieldLogger

	stableTries int
	stableDelay time.Duration

	onResult func(ConversionResult)

	mu      sync.Mutex
	pending map[string]bool // queued or running
}

func newDropWatcher(dir string, pool Pool, params *conversionParams, log logrus.FieldLogger) *dropWatcher {
	return &dropWatcher{
		dir:         dir,
		pool:        pool,
		params:      params,
		log:         log,
		stableTries: defaultStableTries,
		stableDelay: defaultStableDelay,
		pending:     make(map[string]bool),
	}
}

// Run watches until ctx is done or the watcher fails to start. Jobs in flight
// are finished (or canceled through ctx) before it returns.
func (w *dropWatcher) Run(ctx context.Context, existing bool) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	jobs := make(chan string, watchQueueSize)
	var wg sync.WaitGroup
	for i := 0; i < w.pool.Size(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				w.handle(ctx, path)
			}
		}()
	}
	defer func() {
		close(jobs)
		wg.Wait()
	}()

	if existing {
		for _, path := range w.scan() {
			w.enqueue(ctx, jobs, path)
		}
	}

	w.log.WithField("dir", w.dir).Info("watching for receipts")

	for {
		select {
		case <-ctx.Done():
			w.log.WithField("dir", w.dir).Info("watch stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 || !fileutil.IsXMLFile(event.Name) {
				continue
			}
			w.enqueue(ctx, jobs, event.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watcher error")
		}
	}
}

// scan lists .xml files already in the directory.
func (w *dropWatcher) scan() []string {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.log.WithError(err).WithField("dir", w.dir).Error("reading directory")
		return nil
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !fileutil.IsXMLFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(w.dir, e.Name()))
	}
	return paths
}

// enqueue schedules path unless it is already queued or running.
func (w *dropWatcher) enqueue(ctx context.Context, jobs chan<- string, path string) {
	w.mu.Lock()
	if w.pending[path] {
		w.mu.Unlock()
		return
	}
	w.pending[path] = true
	w.mu.Unlock()

	select {
	case jobs <- path:
	case <-ctx.Done():
		w.finish(path)
	}
}

func (w *dropWatcher) finish(path string) {
	w.mu.Lock()
	delete(w.pending, path)
	w.mu.Unlock()
}

// handle converts one dropped file.
func (w *dropWatcher) handle(ctx context.Context, path string) {
	defer w.finish(path)

	log := w.log.WithFields(logrus.Fields{
		"job":  uuid.NewString(),
		"file": path,
	})
	if ctx.Err() != nil {
		return
	}

	if !w.waitStable(ctx, path) {
		log.Warn("file did not settle, skipped")
		return
	}

	conv, err := w.pool.Acquire(ctx)
	if err != nil {
		log.WithError(err).Error("no converter available")
		return
	}
	log.Debug("job started")
	r := convertFile(ctx, conv, path, w.params)
	w.pool.Release(conv)

	entry := log.WithField("duration", r.Duration.Round(time.Millisecond))
	if r.Err != nil {
		entry.WithError(r.Err).Error("conversion failed")
	} else {
		entry.WithField("output", r.OutputPath).Info("receipt rendered")
	}

	if w.onResult != nil {
		w.onResult(r)
	}
}

// waitStable polls the file size until two reads agree, so files still being
// copied into the directory are not parsed half-written.
func (w *dropWatcher) waitStable(ctx context.Context, path string) bool {
	var lastSize int64 = -1

	for i := 0; i < w.stableTries; i++ {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return false
		}

		size := info.Size()
		if size > 0 && size == lastSize {
			return true
		}
		lastSize = size

		select {
		case <-time.After(w.stableDelay):
		case <-ctx.Done():
			return false
		}
	}
	return false
}
