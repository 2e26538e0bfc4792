// Package tts wires the asset bundle, voice table and synthesis engine
// into a single service. A constructed *Service is the "engine is
// initialized" value: callers that hold one know every required asset was
// present at startup, so no ambient ready flag exists anywhere.
package tts

import (
	"errors"
	"fmt"
	"math"

	"github.com/example/go-formant-tts/internal/config"
	"github.com/example/go-formant-tts/internal/synth"
	"github.com/example/go-formant-tts/internal/voice"
)

// ErrInvalidSpeed is returned for a non-positive or non-finite speed
// multiplier. Speed is validated here, before the renderer, where it would
// otherwise produce a non-positive duration.
var ErrInvalidSpeed = errors.New("speed must be a positive finite number")

// Service is the synthesis engine plus its immutable startup assets. Safe
// for concurrent use: synthesis allocates per-call state only and the
// voice table is read-only after construction.
type Service struct {
	cfg    config.Config
	assets *bundle
	voices *voice.Table
}

// NewService loads the asset bundle and voice table. config.json and
// tokenizer.json are required; a missing or empty voices directory is
// tolerated (unknown voices degrade to the built-in default embedding).
func NewService(cfg config.Config) (*Service, error) {
	assets, err := loadBundle(cfg.Paths.AssetsDir)
	if err != nil {
		return nil, err
	}

	voices, err := voice.LoadDir(cfg.Paths.VoicesDir)
	if err != nil {
		return nil, fmt.Errorf("load voices: %w", err)
	}

	return &Service{cfg: cfg, assets: assets, voices: voices}, nil
}

// Synthesize produces the sample buffer for text using voiceID and speed.
// An empty voiceID falls back to the configured default voice; an unknown
// voiceID degrades through the table's fallback chain rather than failing.
// For any well-formed input the returned buffer is complete — synthesis
// never partially fails.
func (s *Service) Synthesize(text, voiceID string, speed float64) ([]float32, error) {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidSpeed, speed)
	}

	if voiceID == "" {
		voiceID = s.cfg.TTS.Voice
	}

	params := s.voices.Params(voiceID)
	return synth.Waveform(text, params, speed), nil
}

// VoiceParams exposes the derived parameters for a voice id, resolving
// through the same fallback chain as Synthesize.
func (s *Service) VoiceParams(voiceID string) voice.Params {
	return s.voices.Params(voiceID)
}

// ListVoices returns the loaded voice identifiers in sorted order.
func (s *Service) ListVoices() []string {
	return s.voices.IDs()
}

// Status is a point-in-time snapshot of the engine for the /status
// endpoint and the doctor command.
type Status struct {
	Initialized     bool     `json:"initialized"`
	VoicesLoaded    int      `json:"voices_loaded"`
	ConfigLoaded    bool     `json:"config_loaded"`
	TokenizerLoaded bool     `json:"tokenizer_loaded"`
	AvailableVoices []string `json:"available_voices"`
	ConfigKeys      []string `json:"config_keys"`
	SynthesisMode   string   `json:"synthesis_mode"`
}

func (s *Service) Status() Status {
	return Status{
		Initialized:     true,
		VoicesLoaded:    s.voices.Len(),
		ConfigLoaded:    len(s.assets.config) > 0,
		TokenizerLoaded: len(s.assets.tokenizer) > 0,
		AvailableVoices: s.voices.IDs(),
		ConfigKeys:      s.assets.configKeys(),
		SynthesisMode:   "rule-based-formant",
	}
}
