package server_test

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/go-formant-tts/internal/server"
	"github.com/example/go-formant-tts/internal/tts"
)

// stubSynthesizer implements server.Synthesizer for tests and records the
// last call.
type stubSynthesizer struct {
	samples []float32
	err     error

	gotText  string
	gotVoice string
	gotSpeed float64
}

func (s *stubSynthesizer) Synthesize(text, voiceID string, speed float64) ([]float32, error) {
	s.gotText = text
	s.gotVoice = voiceID
	s.gotSpeed = speed
	return s.samples, s.err
}

// stubVoiceLister implements server.VoiceLister for tests.
type stubVoiceLister struct {
	voices []string
}

func (v *stubVoiceLister) ListVoices() []string {
	return v.voices
}

// stubStatus implements server.StatusReporter for tests.
type stubStatus struct {
	status tts.Status
}

func (s *stubStatus) Status() tts.Status {
	return s.status
}

func newTestHandler(synth server.Synthesizer, voices server.VoiceLister, opts ...server.Option) http.Handler {
	return server.NewHandler(synth, voices, &stubStatus{status: tts.Status{
		Initialized:   true,
		SynthesisMode: "rule-based-formant",
	}}, opts...)
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	h.ServeHTTP(rec, req)
	return rec
}

// ---------------------------------------------------------------------------
// GET /health
// ---------------------------------------------------------------------------

func TestHealth_Returns200WithStatusOK(t *testing.T) {
	h := newTestHandler(&stubSynthesizer{}, &stubVoiceLister{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("want status=ok, got %q", body["status"])
	}
	if body["service"] != "formanttts" {
		t.Errorf("want service=formanttts, got %q", body["service"])
	}
	if _, ok := body["version"]; !ok {
		t.Error("want version field in response")
	}
}

// ---------------------------------------------------------------------------
// GET /status
// ---------------------------------------------------------------------------

func TestStatus_ReportsEngineSnapshot(t *testing.T) {
	h := newTestHandler(&stubSynthesizer{}, &stubVoiceLister{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	var got tts.Status
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !got.Initialized {
		t.Error("want initialized=true")
	}
	if got.SynthesisMode != "rule-based-formant" {
		t.Errorf("want synthesis_mode=rule-based-formant, got %q", got.SynthesisMode)
	}
}

// ---------------------------------------------------------------------------
// GET /voices
// ---------------------------------------------------------------------------

func TestVoices_ReturnsIDList(t *testing.T) {
	h := newTestHandler(&stubSynthesizer{}, &stubVoiceLister{voices: []string{"af_sarah", "am_adam"}})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/voices", nil)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	var got map[string][]string
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(got["voices"]) != 2 || got["voices"][0] != "af_sarah" {
		t.Errorf("unexpected voices: %v", got["voices"])
	}
}

func TestVoices_ReturnsEmptyArrayWhenNoVoices(t *testing.T) {
	h := newTestHandler(&stubSynthesizer{}, &stubVoiceLister{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/voices", nil)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"voices":[]`) {
		t.Errorf("want empty array, got %s", rec.Body.String())
	}
}

// ---------------------------------------------------------------------------
// POST /synthesize
// ---------------------------------------------------------------------------

func TestSynthesize_ReturnsBase64WAV(t *testing.T) {
	synth := &stubSynthesizer{samples: []float32{0.0, 1.0, -1.0, 0.5}}
	h := newTestHandler(synth, &stubVoiceLister{})

	rec := postJSON(t, h, "/synthesize", `{"text":"hello","voice":"af_sarah","speed":1.5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success    bool   `json:"success"`
		Message    string `json:"message"`
		AudioData  []byte `json:"audio_data"`
		SampleRate int    `json:"sample_rate"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if !resp.Success {
		t.Fatalf("want success=true, message: %s", resp.Message)
	}
	if resp.SampleRate != 22050 {
		t.Errorf("want sample_rate=22050, got %d", resp.SampleRate)
	}
	if synth.gotText != "hello" || synth.gotVoice != "af_sarah" || synth.gotSpeed != 1.5 {
		t.Errorf("synthesizer called with (%q, %q, %v)", synth.gotText, synth.gotVoice, synth.gotSpeed)
	}

	// audio_data is a complete WAV file.
	if len(resp.AudioData) != 44+len(synth.samples)*2 {
		t.Fatalf("audio is %d bytes, want %d", len(resp.AudioData), 44+len(synth.samples)*2)
	}
	if !bytes.HasPrefix(resp.AudioData, []byte("RIFF")) {
		t.Error("audio does not start with a RIFF header")
	}
	if rate := binary.LittleEndian.Uint32(resp.AudioData[24:28]); rate != 22050 {
		t.Errorf("WAV sample rate = %d, want 22050", rate)
	}
	for i, want := range []int16{0, 32767, -32767, 16384} {
		got := int16(binary.LittleEndian.Uint16(resp.AudioData[44+i*2:]))
		if got != want {
			t.Errorf("pcm[%d] = %d, want %d", i, got, want)
		}
	}
}

func TestSynthesize_AppliesConfiguredDefaults(t *testing.T) {
	synth := &stubSynthesizer{samples: []float32{0}}
	h := newTestHandler(synth, &stubVoiceLister{},
		server.WithDefaultVoice("bm_lewis"),
		server.WithDefaultSpeed(1.25),
	)

	rec := postJSON(t, h, "/synthesize", `{"text":"hi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if synth.gotVoice != "bm_lewis" {
		t.Errorf("want default voice bm_lewis, got %q", synth.gotVoice)
	}
	if synth.gotSpeed != 1.25 {
		t.Errorf("want default speed 1.25, got %v", synth.gotSpeed)
	}
}

func TestSynthesize_RejectsBadRequests(t *testing.T) {
	h := newTestHandler(&stubSynthesizer{samples: []float32{0}}, &stubVoiceLister{},
		server.WithMaxTextBytes(16))

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/synthesize", nil)
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("want 405, got %d", rec.Code)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		if rec := postJSON(t, h, "/synthesize", `{`); rec.Code != http.StatusBadRequest {
			t.Errorf("want 400, got %d", rec.Code)
		}
	})

	t.Run("missing text", func(t *testing.T) {
		if rec := postJSON(t, h, "/synthesize", `{"voice":"af_sarah"}`); rec.Code != http.StatusBadRequest {
			t.Errorf("want 400, got %d", rec.Code)
		}
	})

	t.Run("oversized text", func(t *testing.T) {
		body := `{"text":"` + strings.Repeat("a", 32) + `"}`
		if rec := postJSON(t, h, "/synthesize", body); rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("want 413, got %d", rec.Code)
		}
	})

	t.Run("non-positive speed", func(t *testing.T) {
		for _, body := range []string{
			`{"text":"hi","speed":0}`,
			`{"text":"hi","speed":-1}`,
		} {
			if rec := postJSON(t, h, "/synthesize", body); rec.Code != http.StatusBadRequest {
				t.Errorf("body %s: want 400, got %d", body, rec.Code)
			}
		}
	})
}

func TestSynthesize_ReportsEngineFailure(t *testing.T) {
	synth := &stubSynthesizer{err: errors.New("boom")}
	h := newTestHandler(synth, &stubVoiceLister{},
		server.WithLogger(slog.New(slog.NewTextHandler(new(bytes.Buffer), nil))))

	rec := postJSON(t, h, "/synthesize", `{"text":"hi"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", rec.Code)
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Success {
		t.Error("want success=false")
	}
	if !strings.Contains(resp.Message, "boom") {
		t.Errorf("message %q does not mention the engine error", resp.Message)
	}
}

// ---------------------------------------------------------------------------
// POST /synthesize/wav
// ---------------------------------------------------------------------------

func TestSynthesizeWAV_StreamsPCM(t *testing.T) {
	synth := &stubSynthesizer{samples: []float32{0.0, 0.5, -0.5}}
	h := newTestHandler(synth, &stubVoiceLister{})

	rec := postJSON(t, h, "/synthesize/wav", `{"text":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if ct := rec.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("Content-Type = %q, want audio/wav", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "speech.wav") {
		t.Errorf("Content-Disposition = %q, want speech.wav attachment", cd)
	}

	body := rec.Body.Bytes()
	if len(body) != 44+len(synth.samples)*2 {
		t.Fatalf("body is %d bytes, want %d", len(body), 44+len(synth.samples)*2)
	}
	if string(body[0:4]) != "RIFF" || string(body[8:12]) != "WAVE" {
		t.Fatal("malformed streaming header")
	}
	if rate := binary.LittleEndian.Uint32(body[24:28]); rate != 22050 {
		t.Errorf("sample rate = %d, want 22050", rate)
	}
	for i, want := range []int16{0, 16384, -16384} {
		got := int16(binary.LittleEndian.Uint16(body[44+i*2:]))
		if got != want {
			t.Errorf("pcm[%d] = %d, want %d", i, got, want)
		}
	}
}

func TestSynthesizeWAV_RejectsNonPost(t *testing.T) {
	h := newTestHandler(&stubSynthesizer{}, &stubVoiceLister{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/synthesize/wav", nil)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("want 405, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// ParseLogLevel
// ---------------------------------------------------------------------------

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tc := range cases {
		got, err := server.ParseLogLevel(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && got != tc.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
