package bench

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestComputeStats(t *testing.T) {
	t.Run("min max mean", func(t *testing.T) {
		durations := []time.Duration{
			30 * time.Millisecond,
			10 * time.Millisecond,
			20 * time.Millisecond,
		}
		got := ComputeStats(durations)
		if got.Min != 10*time.Millisecond {
			t.Errorf("Min = %v, want 10ms", got.Min)
		}
		if got.Max != 30*time.Millisecond {
			t.Errorf("Max = %v, want 30ms", got.Max)
		}
		if got.Mean != 20*time.Millisecond {
			t.Errorf("Mean = %v, want 20ms", got.Mean)
		}
	})

	t.Run("empty input yields zero stats", func(t *testing.T) {
		if got := ComputeStats(nil); got != (Stats{}) {
			t.Errorf("got %+v, want zero Stats", got)
		}
	})

	t.Run("single run", func(t *testing.T) {
		got := ComputeStats([]time.Duration{42 * time.Millisecond})
		if got.Min != got.Max || got.Min != got.Mean || got.Min != 42*time.Millisecond {
			t.Errorf("got %+v, want all 42ms", got)
		}
	})
}

func TestCalcRTF(t *testing.T) {
	if got := CalcRTF(500*time.Millisecond, time.Second); got != 0.5 {
		t.Errorf("got %v, want 0.5", got)
	}
	if got := CalcRTF(time.Second, 0); got != 0 {
		t.Errorf("zero audio duration: got %v, want 0", got)
	}
}

func TestAudioDuration(t *testing.T) {
	if got := AudioDuration(22050); got != time.Second {
		t.Errorf("AudioDuration(22050) = %v, want 1s", got)
	}
	if got := AudioDuration(11025); got != 500*time.Millisecond {
		t.Errorf("AudioDuration(11025) = %v, want 500ms", got)
	}
	if got := AudioDuration(0); got != 0 {
		t.Errorf("AudioDuration(0) = %v, want 0", got)
	}
}

func TestCheckRTFThreshold(t *testing.T) {
	if err := CheckRTFThreshold(0.9, 0); err != nil {
		t.Errorf("threshold 0 should disable the gate, got %v", err)
	}
	if err := CheckRTFThreshold(0.4, 0.5); err != nil {
		t.Errorf("under threshold: got %v", err)
	}
	if err := CheckRTFThreshold(0.6, 0.5); err == nil {
		t.Error("over threshold: want error")
	}
}

func sampleRuns() ([]RunResult, Stats) {
	runs := []RunResult{
		{Index: 0, Cold: true, Duration: 30 * time.Millisecond, AudioDuration: 600 * time.Millisecond, RTF: 0.05},
		{Index: 1, Duration: 15 * time.Millisecond, AudioDuration: 600 * time.Millisecond, RTF: 0.025},
	}
	stats := ComputeStats([]time.Duration{runs[0].Duration, runs[1].Duration})
	return runs, stats
}

func TestFormatTable(t *testing.T) {
	runs, stats := sampleRuns()
	var buf bytes.Buffer

	FormatTable(runs, stats, &buf)
	out := buf.String()

	if !strings.Contains(out, "RTF") {
		t.Error("missing RTF column header")
	}
	if !strings.Contains(out, "yes") {
		t.Error("cold run not marked")
	}
	if !strings.Contains(out, "(mean)") {
		t.Error("missing mean row")
	}
}

func TestFormatJSON(t *testing.T) {
	runs, stats := sampleRuns()
	var buf bytes.Buffer

	FormatJSON(runs, stats, &buf)

	var got struct {
		Runs []struct {
			Index int     `json:"index"`
			Cold  bool    `json:"cold"`
			RTF   float64 `json:"rtf"`
		} `json:"runs"`
		Stats struct {
			MinMS  float64 `json:"min_ms"`
			MeanMS float64 `json:"mean_ms"`
			MaxMS  float64 `json:"max_ms"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got.Runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(got.Runs))
	}
	if !got.Runs[0].Cold || got.Runs[1].Cold {
		t.Error("cold flag misplaced")
	}
	if got.Stats.MinMS != 15 || got.Stats.MaxMS != 30 {
		t.Errorf("stats = %+v", got.Stats)
	}
}
