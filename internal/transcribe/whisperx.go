package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subgen/internal/extcmd"
	"subgen/internal/logging"
	"subgen/internal/media"
	"subgen/internal/services"
)

const (
	whisperXPackage      = "whisperx"
	whisperXPypiIndexURL = "https://pypi.org/simple"
	whisperXCUDAIndexURL = "https://download.pytorch.org/whl/cu128"
	cudaDevice           = "cuda"
	cpuComputeType       = "float32"
)

// WhisperX runs the WhisperX CLI through uvx. Each Infer call writes the
// model's JSON output into a scratch directory next to the audio input and
// parses it back into raw segments.
type WhisperX struct {
	run         extcmd.Runner
	binary      string
	model       string
	device      string
	timeout     time.Duration
	logger      *slog.Logger
	initialized bool
}

// NewWhisperX builds the uvx-backed WhisperX adapter.
func NewWhisperX(run extcmd.Runner, binary, model, device string, timeout time.Duration, logger *slog.Logger) *WhisperX {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &WhisperX{run: run, binary: binary, model: model, device: device, timeout: timeout, logger: logger}
}

func (w *WhisperX) Name() string {
	return fmt.Sprintf("whisperx/%s", w.model)
}

// Initialize resolves the launcher binary. This is the fatal-on-failure phase
// of the model lifecycle; Infer refuses to run without it.
func (w *WhisperX) Initialize(ctx context.Context) error {
	if w.initialized {
		return nil
	}
	if _, err := extcmd.LookPath(w.binary); err != nil {
		return services.Wrap(services.ErrModel, "transcribe", "initialize model",
			fmt.Sprintf("could not find %q on PATH", w.binary), err)
	}
	w.initialized = true
	return nil
}

// Infer transcribes one audio file. The language, when non-empty, is passed
// to the model as a hint; otherwise the model's detected language is
// reported back in the Inference.
func (w *WhisperX) Infer(ctx context.Context, audio media.AudioAsset, language string) (Inference, error) {
	if !w.initialized {
		return Inference{}, services.Wrap(services.ErrModel, "transcribe", "infer",
			"model not initialized", nil)
	}

	outputDir, err := os.MkdirTemp(filepath.Dir(audio.Path), "whisperx-")
	if err != nil {
		return Inference{}, services.Wrap(services.ErrIO, "transcribe", "infer",
			"create model output directory", err)
	}
	defer os.RemoveAll(outputDir)

	start := time.Now()
	w.logger.Debug("running whisperx",
		logging.String("audio", audio.Path),
		logging.String("model", w.model),
		logging.String("device", w.device),
	)

	_, err = w.run(ctx, extcmd.Spec{
		Binary:  w.binary,
		Args:    w.buildArgs(audio.Path, outputDir, language),
		Timeout: w.timeout,
		// Torch 2.6 changed torch.load default to weights_only=true, breaking
		// WhisperX checkpoint loading.
		Env: []string{"TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1"},
	})
	if err != nil {
		return Inference{}, services.Wrap(services.ErrModel, "transcribe", "infer",
			"whisperx inference failed", err)
	}

	payload, err := loadPayload(whisperJSONPath(outputDir, audio.Path))
	if err != nil {
		return Inference{}, services.Wrap(services.ErrModel, "transcribe", "infer",
			"parse whisperx output", err)
	}

	inference := Inference{Language: strings.TrimSpace(payload.Language)}
	for _, seg := range payload.Segments {
		inference.Segments = append(inference.Segments, RawSegment{
			Start: time.Duration(seg.Start * float64(time.Second)),
			End:   time.Duration(seg.End * float64(time.Second)),
			Text:  seg.Text,
		})
	}

	w.logger.Debug("whisperx finished",
		logging.Int("segments", len(inference.Segments)),
		logging.String("language", inference.Language),
		logging.Duration("elapsed", time.Since(start)),
	)
	return inference, nil
}

func (w *WhisperX) buildArgs(source, outputDir, language string) []string {
	cudaEnabled := w.device == cudaDevice

	args := make([]string, 0, 24)
	if cudaEnabled {
		args = append(args,
			"--index-url", whisperXCUDAIndexURL,
			"--extra-index-url", whisperXPypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", whisperXPypiIndexURL)
	}

	args = append(args,
		whisperXPackage,
		source,
		"--model", w.model,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--segment_resolution", "sentence",
	)

	if lang := strings.TrimSpace(strings.ToLower(language)); lang != "" {
		args = append(args, "--language", lang)
	}
	if cudaEnabled {
		args = append(args, "--device", cudaDevice)
	} else {
		args = append(args, "--device", "cpu", "--compute_type", cpuComputeType)
	}
	return args
}

type whisperSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperPayload struct {
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
}

func whisperJSONPath(outputDir, audioPath string) string {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return filepath.Join(outputDir, base+".json")
}

func loadPayload(path string) (whisperPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return whisperPayload{}, err
	}
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return whisperPayload{}, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload, nil
}
