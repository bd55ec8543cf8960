package rig

import (
	"log"
	"sync"
	"time"

	"github.com/rkjdid/util"
)

// Tracer periodically records the sequencer's published snapshot into a
// bounded in-memory series, so an ammeter capture can be correlated with
// state changes afterwards. It never touches the coprocessor handle.
type Tracer struct {
	seq    *Sequencer
	cfg    *TracerConfig
	mu     sync.Mutex
	trace  []Snapshot
	stopCh chan struct{}
	wg     sync.WaitGroup
}

type TracerConfig struct {
	PollRate   util.Duration
	MaxSamples int
}

var DefaultTracerConfig = TracerConfig{
	PollRate:   util.Duration(time.Millisecond * 100),
	MaxSamples: 36000, // one hour at the default poll rate
}

func NewTracer(seq *Sequencer, cfg *TracerConfig) *Tracer {
	if cfg == nil {
		cfg = &DefaultTracerConfig
	}
	return &Tracer{
		seq: seq,
		cfg: cfg,
	}
}

func (t *Tracer) Stop() {
	if t.stopCh == nil {
		return
	}
	log.Println("stopping state tracer")
	close(t.stopCh)
	t.wg.Wait()
}

// Record starts the sampling routine. To stop it, call Stop().
func (t *Tracer) Record() {
	t.stopCh = make(chan struct{})
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for {
			select {
			case <-time.After(time.Duration(t.cfg.PollRate)):
			case <-t.stopCh:
				t.stopCh = nil
				return
			}

			sn := t.seq.Snapshot()
			t.mu.Lock()
			t.trace = append(t.trace, sn)
			if t.cfg.MaxSamples > 0 && len(t.trace) > t.cfg.MaxSamples {
				t.trace = t.trace[len(t.trace)-t.cfg.MaxSamples:]
			}
			t.mu.Unlock()
		}
	}()
}

// Trace returns a copy of the recorded series.
func (t *Tracer) Trace() []Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Snapshot, len(t.trace))
	copy(out, t.trace)
	return out
}
