package rig

import (
	"testing"
	"time"

	"github.com/rkjdid/util"
)

func TestTracerRecords(t *testing.T) {
	f := &fakeEsp{}
	s := testSequencer(t, f)

	tr := NewTracer(s, &TracerConfig{
		PollRate:   util.Duration(time.Millisecond),
		MaxSamples: 1000,
	})
	tr.Record()
	time.Sleep(time.Millisecond * 20)
	tr.Stop()

	trace := tr.Trace()
	if len(trace) == 0 {
		t.Fatal("no samples recorded")
	}
	for _, sn := range trace {
		if sn.PowerState != Idle {
			t.Errorf("sample %s: got %s, want Idle", sn.Time, sn.PowerState)
		}
		if sn.Time.IsZero() {
			t.Error("sample without timestamp")
		}
	}
}

func TestTracerBounded(t *testing.T) {
	f := &fakeEsp{}
	s := testSequencer(t, f)

	tr := NewTracer(s, &TracerConfig{
		PollRate:   util.Duration(time.Millisecond),
		MaxSamples: 5,
	})
	tr.Record()
	time.Sleep(time.Millisecond * 50)
	tr.Stop()

	if n := len(tr.Trace()); n > 5 {
		t.Errorf("trace grew to %d samples, limit is 5", n)
	}
}
