package progrock

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vito/progrock"
	"go.trai.ch/cask/internal/core/ports"
)

var _ progrock.Writer = (*Reporter)(nil)

// Reporter is a progrock.Writer that reports vertex output and completion
// through a ports.Logger. Each vertex is reported as finished once.
type Reporter struct {
	logger ports.Logger

	mu    sync.Mutex
	names map[string]string
	done  map[string]bool
}

// NewReporter creates a Reporter logging to logger.
func NewReporter(logger ports.Logger) *Reporter {
	return &Reporter{
		logger: logger,
		names:  make(map[string]string),
		done:   make(map[string]bool),
	}
}

// WriteStatus logs the vertex output lines and the vertices that finished.
func (r *Reporter) WriteStatus(update *progrock.StatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range update.Vertexes {
		r.names[v.Id] = v.Name
	}

	for _, l := range update.Logs {
		name := r.names[l.Vertex]
		for line := range strings.SplitSeq(strings.TrimRight(string(l.Data), "\n"), "\n") {
			if line == "" {
				continue
			}
			if l.Stream == progrock.LogStream_STDERR {
				r.logger.Warn(fmt.Sprintf("%s: %s", name, line))
			} else {
				r.logger.Info(fmt.Sprintf("%s: %s", name, line))
			}
		}
	}

	for _, v := range update.Vertexes {
		if v.Completed == nil || r.done[v.Id] {
			continue
		}
		r.done[v.Id] = true
		switch {
		case v.Error != nil:
			r.logger.Warn(fmt.Sprintf("%s: failed: %s", v.Name, v.GetError()))
		case v.Cached:
			r.logger.Info(v.Name + ": cached")
		default:
			var took time.Duration
			if v.Started != nil {
				took = v.Completed.AsTime().Sub(v.Started.AsTime())
			}
			r.logger.Info(fmt.Sprintf("%s: done in %s", v.Name, took.Round(time.Millisecond)))
		}
	}
	return nil
}

// Close ends the report.
func (r *Reporter) Close() error {
	return nil
}
