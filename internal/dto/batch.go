package dto

// Batch task statuses.
const (
	BatchStatusProcessing = "processing"
	BatchStatusCompleted  = "completed"
)

// BatchItemResult is the outcome of one image in a batch. A failed image
// records its error without aborting the rest of the batch.
type BatchItemResult struct {
	Filename string      `json:"filename"`
	Index    int         `json:"index"`
	Status   string      `json:"status"`
	Error    string      `json:"error,omitempty"`
	Words    []WordInput `json:"words"`
	Count    int         `json:"count"`
}

// BatchStatusResponse is the polled progress record of a batch task.
type BatchStatusResponse struct {
	TaskID       string            `json:"task_id"`
	UserID       string            `json:"-"`
	Total        int               `json:"total"`
	Completed    int               `json:"completed"`
	Errors       int               `json:"errors"`
	CurrentImage string            `json:"current_image,omitempty"`
	Status       string            `json:"status"`
	Results      []BatchItemResult `json:"results"`
	StartedAt    string            `json:"started_at"`
	CompletedAt  string            `json:"completed_at,omitempty"`
}

// BatchAcceptedResponse acknowledges a submitted batch.
type BatchAcceptedResponse struct {
	TaskID  string `json:"task_id"`
	Total   int    `json:"total"`
	Status  string `json:"status"`
	Message string `json:"message"`
}
