package types

// TranscriptEntry is one question/answer exchange. The JSON field names
// match the transcript file written by the collect step.
type TranscriptEntry struct {
	Question string `json:"user1"`
	Answer   string `json:"user2"`
}

// ExtractionRecord keeps the raw model output next to the exchange it was
// produced from. Malformed outputs are recorded as well.
type ExtractionRecord struct {
	Question      string `json:"question"`
	Answer        string `json:"response"`
	RawExtraction string `json:"processed_response"`
}

// SkippedExtraction describes a transcript entry whose extraction could not
// be merged. The record itself is still kept in the processed output.
type SkippedExtraction struct {
	Index    int    `json:"index"`
	Question string `json:"question"`
	Reason   string `json:"reason"`
}
