package transcribe

// ModelInfo describes one Whisper model selector.
type ModelInfo struct {
	Name        string
	Description string
}

// KnownModels lists the Whisper model selectors WhisperX accepts, smallest
// first. The list is informational; an unlisted selector is passed through
// so new releases work without a code change.
func KnownModels() []ModelInfo {
	return []ModelInfo{
		{Name: "tiny", Description: "Fastest, lowest accuracy"},
		{Name: "base", Description: "Good default for clear speech"},
		{Name: "small", Description: "Better accuracy, ~2x slower than base"},
		{Name: "medium", Description: "High accuracy, GPU recommended"},
		{Name: "large-v2", Description: "Highest accuracy, GPU strongly recommended"},
		{Name: "large-v3", Description: "Latest large model, GPU strongly recommended"},
	}
}

// IsKnownModel reports whether name is in the published catalog.
func IsKnownModel(name string) bool {
	for _, info := range KnownModels() {
		if info.Name == name {
			return true
		}
	}
	return false
}
