package adapter

import (
	"fmt"
	"net/http"

	"github.com/akolanti/ragrouter/internal/api"
	"github.com/akolanti/ragrouter/internal/domain/commonModels"
	"github.com/akolanti/ragrouter/internal/domain/jobModel"
	"github.com/akolanti/ragrouter/internal/domain/ragErrors"
)

const internalErrorMessage = "internal server error"

func ToAsyncUploadResponse(job jobModel.Job) api.AsyncUploadResponse {
	return api.AsyncUploadResponse{
		Filename:  job.Payload.Filename,
		Id:        job.Id,
		StatusURL: fmt.Sprintf("status/%s", job.Id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	res := api.JobResponse{
		Id:          job.Id,
		Status:      string(job.Status),
		CurrentStep: string(job.CurrentStep),
		Filename:    job.Payload.Filename,
		Chunks:      job.Payload.Chunks,
		Error:       errorPtr,
		StartTime:   job.CreatedTime,
	}
	if !job.EndTime.IsZero() {
		end := job.EndTime
		res.EndTime = &end
	}
	return res
}

func ToQueryResponse(r commonModels.QueryResponse) api.QueryResponse {
	return api.QueryResponse{ModelUsed: r.ModelUsed, Response: r.Response}
}

func ToQueryRequest(r api.QueryRequest) commonModels.QueryRequest {
	return commonModels.QueryRequest{
		Query:     r.Query,
		OwnerId:   r.UserId,
		Tier:      r.Version,
		Model:     r.Model,
		AgentMode: r.AgentMode,
	}
}

/*
ErrorToHTTP maps a domain error to its status and body. Only the domain message
and hint reach the client; wrapped upstream errors stay in the logs.
*/
func ErrorToHTTP(err error) (int, api.ErrorResponse) {
	status := ragErrors.HTTPStatus(err)
	de, ok := ragErrors.As(err)
	if !ok {
		return status, NewErrorResponse(string(ragErrors.KindInternal), internalErrorMessage, "")
	}
	return status, NewErrorResponse(string(de.Code), de.Message, de.Hint)
}

func NewErrorResponse(code, message, hint string) api.ErrorResponse {
	return api.ErrorResponse{Error: api.ErrorBody{Code: code, Message: message, Hint: hint}}
}

// BadRequest is the body for failures detected by the HTTP layer itself.
func BadRequest(message string, httpCode int) api.ErrorResponse {
	code := string(ragErrors.KindInvalidInput)
	switch httpCode {
	case http.StatusUnauthorized:
		code = "UNAUTHORIZED"
	case http.StatusTooManyRequests:
		code = "RATE_LIMITED"
	case http.StatusNotFound:
		code = "NOT_FOUND"
	case http.StatusInternalServerError:
		code = string(ragErrors.KindInternal)
	}
	return NewErrorResponse(code, message, "")
}
