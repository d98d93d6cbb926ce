package api

import (
	"time"

	"github.com/akolanti/ragrouter/internal/domain/commonModels"
)

// errors---------------------

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code" example:"INVALID_INPUT"`
	Message string `json:"message" example:"query must not be empty"`
	Hint    string `json:"hint,omitempty" example:"set NVIDIA_API_KEY"`
}

// requests---------------------

type QueryRequest struct {
	Query     string `json:"query" validate:"required" example:"What does the contract say about termination?"`
	UserId    string `json:"user_id" validate:"required" example:"user-42"`
	Version   string `json:"version" example:"Pro"`
	Model     string `json:"model,omitempty" example:"bielik"`
	AgentMode bool   `json:"agent_mode,omitempty"`
}

type PurgeRequest struct {
	UserId string `json:"user_id" validate:"required" example:"user-42"`
	Purge  bool   `json:"purge" example:"true"`
}

// responses---------------------

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

type QueryResponse struct {
	ModelUsed string `json:"model_used" example:"nvidia/llama3-chatqa-1.5-70b"`
	Response  string `json:"response"`
}

type UploadResponse struct {
	Filename string `json:"filename" example:"contract.pdf"`
	Chunks   int    `json:"chunks" example:"12"`
}

type AsyncUploadResponse struct {
	Filename  string `json:"filename" example:"contract.pdf"`
	Id        string `json:"id"`
	StatusURL string `json:"status_url" example:"status/0b6b9d2e-5f43-4a57-a1a8-3e1b6d5b1f11"`
}

type PurgeResponse struct {
	Purged  bool `json:"purged"`
	Deleted int  `json:"deleted" example:"42"`
}

type ModelsResponse struct {
	Models []commonModels.ModelDescriptor `json:"models"`
}

// JobResponse is the status of an async upload.
type JobResponse struct {
	Id          string            `json:"id"`
	Status      string            `json:"status" example:"COMPLETE"`
	CurrentStep string            `json:"current_step" example:"IngestStoring"`
	Filename    string            `json:"filename"`
	Chunks      int               `json:"chunks"`
	Error       *JobOutgoingError `json:"error,omitempty"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     *time.Time        `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"503"`
	Message string `json:"message" example:"INGESTION_FAILURE"`
	Retry   bool   `json:"can_retry" example:"true"`
}

// stream payloads---------------------

type StreamToken struct {
	Text string `json:"text"`
}

type StreamDone struct {
	ModelUsed string `json:"model_used"`
}

type StreamError struct {
	Message string `json:"message"`
}
