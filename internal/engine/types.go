package engine

// --- Tool inputs ---

type TranscriptInput struct {
	URL      string `json:"url" jsonschema:"YouTube watch URL (youtube.com/watch?v=ID or youtu.be/ID)"`
	Language string `json:"language,omitempty" jsonschema:"Preferred caption language: id, en or auto (default: id)"`
}

type SummarizeInput struct {
	Transcript string `json:"transcript" jsonschema:"Full transcript text to summarize"`
	Model      string `json:"model" jsonschema:"Model identifier, see list_models (e.g. gemini-flash, llama-3.3-70b-versatile)"`
	Language   string `json:"language,omitempty" jsonschema:"Summary language: id, en or auto (default: id)"`
}

type DigestInput struct {
	URL      string `json:"url" jsonschema:"YouTube watch URL"`
	Model    string `json:"model,omitempty" jsonschema:"Model identifier (default: gemini-flash)"`
	Language string `json:"language,omitempty" jsonschema:"Summary language: id, en or auto (default: id)"`
}

type ListModelsInput struct{}

// --- Transcript acquisition ---

// VideoMetadata is best-effort; every field may be empty.
type VideoMetadata struct {
	VideoTitle  string `json:"videoTitle,omitempty"`
	ChannelName string `json:"channelName,omitempty"`
	UploadDate  string `json:"uploadDate,omitempty"`
	ViewCount   string `json:"viewCount,omitempty"`
}

// Complete reports whether every metadata field is populated.
func (m VideoMetadata) Complete() bool {
	return m.VideoTitle != "" && m.ChannelName != "" && m.UploadDate != "" && m.ViewCount != ""
}

// Merge fills fields still empty in m from other.
func (m *VideoMetadata) Merge(other VideoMetadata) {
	if m.VideoTitle == "" {
		m.VideoTitle = other.VideoTitle
	}
	if m.ChannelName == "" {
		m.ChannelName = other.ChannelName
	}
	if m.UploadDate == "" {
		m.UploadDate = other.UploadDate
	}
	if m.ViewCount == "" {
		m.ViewCount = other.ViewCount
	}
}

type TranscriptResult struct {
	Transcript string `json:"transcript"`
	VideoID    string `json:"videoId"`
	VideoMetadata
	DetectedLanguage string `json:"detectedLanguage,omitempty"`
}

// --- Summarization ---

// SummaryItem is one titled entry of a summary section.
type SummaryItem struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
}

// SummaryResult is the canonical structured summary.
type SummaryResult struct {
	MainTopic  string        `json:"mainTopic"`
	Chronology []SummaryItem `json:"chronology"`
	KeyPoints  []SummaryItem `json:"keyPoints"`
	Insights   []SummaryItem `json:"insights"`
	Conclusion string        `json:"conclusion"`
}

type DigestResult struct {
	Transcript TranscriptResult `json:"transcript"`
	Summary    SummaryResult    `json:"summary"`
	Model      string           `json:"model"`
	Language   string           `json:"language"`
}

// ModelInfo describes one selectable summarization model.
type ModelInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Family      string `json:"family"`
	Default     bool   `json:"default,omitempty"`
}

type ListModelsOutput struct {
	Models []ModelInfo `json:"models"`
}
