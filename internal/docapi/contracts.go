package docapi

import "time"

// Job states reported by the status endpoint.
const (
	StatusAccepted   = "accepted"
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusErrored    = "error"
)

type submitResponse struct {
	JobID   string `json:"whisper_hash"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type retrieveResponse struct {
	ResultText string       `json:"result_text"`
	Pages      int          `json:"page_count,omitempty"`
	Confidence float32      `json:"confidence,omitempty"`
	Tables     [][][]string `json:"tables,omitempty"`
}

// Result is the layout-preserving text of one document. Tables, when the
// service recognized any, hold rows of cells with the header row first.
type Result struct {
	JobID      string
	Text       string
	Pages      int
	Confidence float32
	Tables     [][][]string
	Duration   time.Duration
}
