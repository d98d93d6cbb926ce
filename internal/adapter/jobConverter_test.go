package adapter

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/akolanti/ragrouter/internal/domain/jobModel"
	"github.com/akolanti/ragrouter/internal/domain/ragErrors"
	"github.com/stretchr/testify/assert"
)

func TestErrorToHTTP(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
		wantHint bool
	}{
		{"invalid input", ragErrors.InvalidInput("query must not be empty", nil), http.StatusBadRequest, "INVALID_INPUT", false},
		{"model unavailable", ragErrors.ModelUnavailable("nvidia", "set NVIDIA_API_KEY", nil), http.StatusServiceUnavailable, "CONFIGURATION_ERROR", true},
		{"store unavailable", fmt.Errorf("retrieve: %w", ragErrors.StoreUnavailable("qdrant down", errors.New("dial"))), http.StatusServiceUnavailable, "STORE_UNAVAILABLE", true},
		{"model invocation", ragErrors.ModelInvocation("llm failed", nil), http.StatusBadGateway, "MODEL_INVOCATION_ERROR", false},
		{"unknown", errors.New("secret upstream detail"), http.StatusInternalServerError, "INTERNAL_ERROR", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := ErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantBody, body.Error.Code)
			assert.Equal(t, tt.wantHint, body.Error.Hint != "")
			assert.NotContains(t, body.Error.Message, "secret upstream detail")
		})
	}
}

func TestToAPIResponse(t *testing.T) {
	created := time.Now()
	running := jobModel.Job{
		Id:          "job-1",
		Status:      jobModel.JobStatusRunning,
		CurrentStep: jobModel.IngestChunking,
		CreatedTime: created,
		Payload:     jobModel.IngestPayload{Filename: "a.pdf"},
	}

	res := ToAPIResponse(running)
	assert.Equal(t, "RUNNING", res.Status)
	assert.Equal(t, "a.pdf", res.Filename)
	assert.Nil(t, res.Error)
	assert.Nil(t, res.EndTime)

	failed := running
	failed.Status = jobModel.JobStatusError
	failed.Error = jobModel.JobError{Code: 503, Message: "vector store unavailable", Retry: true}
	failed.EndTime = created.Add(time.Second)

	res = ToAPIResponse(failed)
	if assert.NotNil(t, res.Error) {
		assert.Equal(t, 503, res.Error.Code)
		assert.True(t, res.Error.Retry)
	}
	assert.NotNil(t, res.EndTime)
}

func TestToAsyncUploadResponse(t *testing.T) {
	res := ToAsyncUploadResponse(jobModel.Job{Id: "abc", Payload: jobModel.IngestPayload{Filename: "notes.txt"}})
	assert.Equal(t, "status/abc", res.StatusURL)
	assert.Equal(t, "notes.txt", res.Filename)
}
