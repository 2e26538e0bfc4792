package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/example/go-formant-tts/internal/audio"
	"github.com/example/go-formant-tts/internal/config"
	"github.com/example/go-formant-tts/internal/synth"
	"github.com/example/go-formant-tts/internal/tts"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Synthesizer produces a sample buffer from text, voice id and speed.
type Synthesizer interface {
	Synthesize(text, voiceID string, speed float64) ([]float32, error)
}

// VoiceLister returns the available voice identifiers.
type VoiceLister interface {
	ListVoices() []string
}

// StatusReporter returns the engine status snapshot.
type StatusReporter interface {
	Status() tts.Status
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes int
	workers      int
	defaultVoice string
	defaultSpeed float64
	logger       *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTextBytes: 4096,
		workers:      2,
		defaultVoice: "af_sarah",
		defaultSpeed: 1.0,
		logger:       slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed text length in bytes per request.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithWorkers sets the maximum number of concurrent synthesis calls.
// Zero disables throttling; synthesis is CPU-bound and safe to run in
// parallel, the limit only bounds memory per in-flight buffer.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithDefaultVoice sets the voice used when a request omits one.
func WithDefaultVoice(v string) Option {
	return func(o *options) { o.defaultVoice = v }
}

// WithDefaultSpeed sets the speed used when a request omits one.
func WithDefaultSpeed(s float64) Option {
	return func(o *options) { o.defaultSpeed = s }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	synth  Synthesizer
	voices VoiceLister
	status StatusReporter
	opts   options
	sem    chan struct{} // semaphore for worker pool
	log    *slog.Logger
}

// NewHandler returns an http.Handler serving /health, /status, /voices,
// POST /synthesize and POST /synthesize/wav.
func NewHandler(synth Synthesizer, voices VoiceLister, status StatusReporter, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		synth:  synth,
		voices: voices,
		status: status,
		opts:   opts,
		log:    opts.logger,
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/status", h.handleStatus)
	mux.HandleFunc("/voices", h.handleVoices)
	mux.HandleFunc("/synthesize", h.handleSynthesize)
	mux.HandleFunc("/synthesize/wav", h.handleSynthesizeWAV)
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "formanttts",
		"version": buildVersion(),
	})
}

func (h *handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.status.Status())
}

func (h *handler) handleVoices(w http.ResponseWriter, _ *http.Request) {
	voices := h.voices.ListVoices()
	if voices == nil {
		voices = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"voices": voices})
}

type synthesizeRequest struct {
	Text  string   `json:"text"`
	Voice string   `json:"voice"`
	Speed *float64 `json:"speed"`
}

type synthesizeResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	AudioData  []byte `json:"audio_data,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
}

// decodeSynthesizeRequest validates the request body and applies the
// configured defaults for voice and speed.
func (h *handler) decodeSynthesizeRequest(r *http.Request) (synthesizeRequest, int, error) {
	if r.Method != http.MethodPost {
		return synthesizeRequest{}, http.StatusMethodNotAllowed, errors.New("method not allowed")
	}
	if r.Body == nil {
		return synthesizeRequest{}, http.StatusBadRequest, errors.New("request body is required")
	}

	var req synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return synthesizeRequest{}, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err)
	}

	if req.Text == "" {
		return synthesizeRequest{}, http.StatusBadRequest, errors.New("text field is required")
	}
	if len(req.Text) > h.opts.maxTextBytes {
		return synthesizeRequest{}, http.StatusRequestEntityTooLarge,
			fmt.Errorf("text exceeds maximum size of %d bytes", h.opts.maxTextBytes)
	}

	if req.Voice == "" {
		req.Voice = h.opts.defaultVoice
	}
	if req.Speed == nil {
		req.Speed = &h.opts.defaultSpeed
	}
	if *req.Speed <= 0 || math.IsNaN(*req.Speed) || math.IsInf(*req.Speed, 0) {
		return synthesizeRequest{}, http.StatusBadRequest,
			fmt.Errorf("speed must be a positive finite number, got %v", *req.Speed)
	}

	return req, http.StatusOK, nil
}

// acquireWorker blocks until a worker slot is free, honouring request
// cancellation while waiting. The returned release func is a no-op when
// throttling is disabled.
func (h *handler) acquireWorker(r *http.Request) (release func(), ok bool) {
	if h.sem == nil {
		return func() {}, true
	}
	select {
	case h.sem <- struct{}{}:
		return func() { <-h.sem }, true
	case <-r.Context().Done():
		return nil, false
	}
}

func (h *handler) runSynthesis(r *http.Request, req synthesizeRequest) ([]float32, error) {
	start := time.Now()
	samples, err := h.synth.Synthesize(req.Text, req.Voice, *req.Speed)
	durationMS := time.Since(start).Milliseconds()

	if err != nil {
		h.log.ErrorContext(r.Context(), "synthesis failed",
			slog.String("voice", req.Voice),
			slog.Int("text_len", len(req.Text)),
			slog.Int64("duration_ms", durationMS),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	h.log.InfoContext(r.Context(), "synthesis complete",
		slog.String("voice", req.Voice),
		slog.Float64("speed", *req.Speed),
		slog.Int("text_len", len(req.Text)),
		slog.Int64("duration_ms", durationMS),
		slog.Int("samples", len(samples)),
	)
	return samples, nil
}

func (h *handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	req, status, err := h.decodeSynthesizeRequest(r)
	if err != nil {
		writeJSON(w, status, synthesizeResponse{Success: false, Message: err.Error()})
		return
	}

	release, ok := h.acquireWorker(r)
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable,
			synthesizeResponse{Success: false, Message: "request cancelled while waiting for worker"})
		return
	}
	defer release()

	samples, err := h.runSynthesis(r, req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError,
			synthesizeResponse{Success: false, Message: "synthesis failed: " + err.Error()})
		return
	}

	wavData, err := audio.EncodeWAVPCM16(samples, synth.SampleRate)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError,
			synthesizeResponse{Success: false, Message: "failed to encode audio: " + err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, synthesizeResponse{
		Success:    true,
		Message:    fmt.Sprintf("synthesized %d samples with voice %q", len(samples), req.Voice),
		AudioData:  wavData,
		SampleRate: synth.SampleRate,
	})
}

func (h *handler) handleSynthesizeWAV(w http.ResponseWriter, r *http.Request) {
	req, status, err := h.decodeSynthesizeRequest(r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	release, ok := h.acquireWorker(r)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
		return
	}
	defer release()

	samples, err := h.runSynthesis(r, req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "synthesis failed: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", `attachment; filename="speech.wav"`)
	w.WriteHeader(http.StatusOK)

	// Stream the header and the quantized samples; total length is known
	// but the streaming header keeps the write path allocation-free.
	if _, err := audio.WriteWAVHeaderStreaming(w); err != nil {
		return
	}
	_, _ = audio.WritePCM16Samples(w, samples)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server — wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	tts             *tts.Service
	shutdownTimeout time.Duration
}

func New(cfg config.Config, svc *tts.Service) *Server {
	return &Server{
		cfg:             cfg,
		tts:             svc,
		shutdownTimeout: 30 * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

func (s *Server) Start(ctx context.Context) error {
	svc := s.tts
	if svc == nil {
		var err error
		svc, err = tts.NewService(s.cfg)
		if err != nil {
			return fmt.Errorf("initialize synthesis service: %w", err)
		}
	}

	h := NewHandler(svc, svc, svc,
		WithWorkers(s.cfg.Server.Workers),
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
		WithDefaultVoice(s.cfg.TTS.Voice),
		WithDefaultSpeed(s.cfg.TTS.Speed),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
