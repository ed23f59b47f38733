package pipeline

import (
	"log/slog"
	"time"

	"subgen/internal/config"
	"subgen/internal/extcmd"
	"subgen/internal/extract"
	"subgen/internal/history"
	"subgen/internal/logging"
	"subgen/internal/mux"
	"subgen/internal/transcribe"
)

// State is one phase of the run state machine.
type State string

const (
	StateIdle         State = "idle"
	StateExtracting   State = "extracting_audio"
	StateTranscribing State = "transcribing"
	StateFormatting   State = "formatting"
	StateMuxing       State = "muxing"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// Options selects per-run behavior. The zero value transcribes with the
// configured defaults and stops after writing the subtitle file.
type Options struct {
	// Language overrides the configured language hint for this run.
	Language string
	// Mux embeds the generated subtitles back into the video.
	Mux bool
	// KeepAudio retains the extracted audio intermediate next to the
	// subtitle output instead of deleting it with the workspace.
	KeepAudio bool
	// SubtitlePath overrides the derived subtitle output location.
	SubtitlePath string
	// VideoPath overrides the derived muxed video output location.
	VideoPath string
}

// Outcome summarizes a finished run. State is StateDone on success and
// StateFailed otherwise, with FailedStage naming the stage that broke.
type Outcome struct {
	RunID        string
	State        State
	FailedStage  string
	SubtitlePath string
	VideoPath    string
	AudioPath    string
	Language     string
	SegmentCount int
	Elapsed      time.Duration
}

// Pipeline sequences extraction, transcription, formatting, and muxing for
// one video at a time. Each Run owns an isolated workspace; independent
// Pipelines can run concurrently since they share no mutable state.
type Pipeline struct {
	cfg       *config.Config
	runner    extcmd.Runner
	extractor *extract.Extractor
	engine    *transcribe.Engine
	muxer     *mux.Muxer
	store     *history.Store
	logger    *slog.Logger
}

// New wires a Pipeline from config. runner defaults to the real process
// boundary; store may be nil to skip history recording.
func New(cfg *config.Config, runner extcmd.Runner, model transcribe.Model, store *history.Store, logger *slog.Logger) *Pipeline {
	if runner == nil {
		runner = extcmd.Run
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	extractor := extract.New(runner, cfg.FFmpegBinary(), cfg.ExtractTimeout(), cfg.Audio,
		logging.NewComponentLogger(logger, "extract"))
	engine := transcribe.NewEngine(model, extractor, cfg.Transcription,
		logging.NewComponentLogger(logger, "transcribe"))
	muxer := mux.New(runner, cfg.FFmpegBinary(), cfg.MuxTimeout(), cfg.Subtitles.Codec,
		logging.NewComponentLogger(logger, "mux"))

	return &Pipeline{
		cfg:       cfg,
		runner:    runner,
		extractor: extractor,
		engine:    engine,
		muxer:     muxer,
		store:     store,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
	}
}

// DefaultModel builds the configured WhisperX backend for the pipeline.
func DefaultModel(cfg *config.Config, runner extcmd.Runner, logger *slog.Logger) transcribe.Model {
	if runner == nil {
		runner = extcmd.Run
	}
	return transcribe.NewWhisperX(runner, cfg.UVXBinary(), cfg.Transcription.Model,
		cfg.Transcription.Device, cfg.TranscribeTimeout(),
		logging.NewComponentLogger(logger, "whisperx"))
}
