package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/akolanti/ragrouter/internal/api"
	"github.com/akolanti/ragrouter/internal/domain/commonModels"
	"github.com/akolanti/ragrouter/internal/domain/jobModel"
	"github.com/akolanti/ragrouter/internal/domain/ragErrors"
	"github.com/akolanti/ragrouter/internal/job"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRagService struct {
	OnUpload func(ctx context.Context, req commonModels.UploadRequest) (commonModels.UploadResult, error)
	OnQuery  func(ctx context.Context, req commonModels.QueryRequest) (commonModels.QueryResponse, error)
	OnStream func(ctx context.Context, req commonModels.QueryRequest) (<-chan commonModels.StreamEvent, error)
	OnPurge  func(ctx context.Context, ownerId string, confirm bool) (commonModels.PurgeResult, error)
}

func (m *mockRagService) Upload(ctx context.Context, req commonModels.UploadRequest) (commonModels.UploadResult, error) {
	return m.OnUpload(ctx, req)
}

func (m *mockRagService) Query(ctx context.Context, req commonModels.QueryRequest) (commonModels.QueryResponse, error) {
	return m.OnQuery(ctx, req)
}

func (m *mockRagService) StreamQuery(ctx context.Context, req commonModels.QueryRequest) (<-chan commonModels.StreamEvent, error) {
	return m.OnStream(ctx, req)
}

func (m *mockRagService) Purge(ctx context.Context, ownerId string, confirm bool) (commonModels.PurgeResult, error) {
	return m.OnPurge(ctx, ownerId, confirm)
}

func (m *mockRagService) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	return j
}

func (m *mockRagService) Models() []commonModels.ModelDescriptor {
	return []commonModels.ModelDescriptor{{Id: "nvidia/llama3-chatqa-1.5-8b", ShortName: "chatqa-8b"}}
}

type memJobStore struct {
	jobs map[string]jobModel.Job
}

func (m *memJobStore) GetJob(ctx context.Context, id string) (jobModel.Job, bool) {
	j, ok := m.jobs[id]
	return j, ok
}

func (m *memJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	m.jobs[j.Id] = j
	return nil
}

func (m *memJobStore) DeleteJob(ctx context.Context, id string) {
	delete(m.jobs, id)
}

func newJobService() *job.Service {
	return job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 4),
		DispatcherChannel: make(chan bool, 4),
		JobStore:          &memJobStore{jobs: map[string]jobModel.Job{}},
	})
}

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(method, path, bytes.NewReader(data))
}

func multipartRequest(t *testing.T, target string, fields map[string]string, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var body api.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHealthHandler(t *testing.T) {
	h := NewHandler(&mockRagService{}, nil, t.TempDir())
	rec := httptest.NewRecorder()

	h.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestQueryHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		setupMocks func(m *mockRagService)
		wantCode   int
		wantError  string
		wantHint   bool
	}{
		{
			name: "answer",
			body: api.QueryRequest{Query: "what?", UserId: "u1", Version: "Pro", Model: "bielik", AgentMode: true},
			setupMocks: func(m *mockRagService) {
				m.OnQuery = func(ctx context.Context, req commonModels.QueryRequest) (commonModels.QueryResponse, error) {
					if req.OwnerId != "u1" || req.Tier != "Pro" || req.Model != "bielik" || !req.AgentMode {
						t.Errorf("request not mapped: %+v", req)
					}
					return commonModels.QueryResponse{ModelUsed: "speakleash/bielik-11b-v2.3-instruct", Response: "42"}, nil
				}
			},
			wantCode: http.StatusOK,
		},
		{
			name: "invalid input",
			body: api.QueryRequest{UserId: "u1"},
			setupMocks: func(m *mockRagService) {
				m.OnQuery = func(ctx context.Context, req commonModels.QueryRequest) (commonModels.QueryResponse, error) {
					return commonModels.QueryResponse{}, ragErrors.InvalidInput("query must not be empty", nil)
				}
			},
			wantCode:  http.StatusBadRequest,
			wantError: "INVALID_INPUT",
		},
		{
			name: "model unavailable carries hint",
			body: api.QueryRequest{Query: "q", UserId: "u1"},
			setupMocks: func(m *mockRagService) {
				m.OnQuery = func(ctx context.Context, req commonModels.QueryRequest) (commonModels.QueryResponse, error) {
					return commonModels.QueryResponse{}, ragErrors.ModelUnavailable("nvidia", "set NVIDIA_API_KEY", nil)
				}
			},
			wantCode:  http.StatusServiceUnavailable,
			wantError: "CONFIGURATION_ERROR",
			wantHint:  true,
		},
		{
			name:       "malformed json",
			body:       "not an object",
			setupMocks: func(m *mockRagService) {},
			wantCode:   http.StatusBadRequest,
			wantError:  "INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockRagService{}
			tt.setupMocks(m)
			h := NewHandler(m, nil, t.TempDir())
			rec := httptest.NewRecorder()

			h.QueryHandler(rec, jsonRequest(t, http.MethodPost, "/query", tt.body))

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantError == "" {
				var res api.QueryResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
				assert.Equal(t, "42", res.Response)
				assert.Equal(t, "speakleash/bielik-11b-v2.3-instruct", res.ModelUsed)
				return
			}
			body := decodeError(t, rec)
			assert.Equal(t, tt.wantError, body.Error.Code)
			assert.Equal(t, tt.wantHint, body.Error.Hint != "")
		})
	}
}

func streamOf(events ...commonModels.StreamEvent) <-chan commonModels.StreamEvent {
	ch := make(chan commonModels.StreamEvent, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	return ch
}

func TestQueryStreamHandler(t *testing.T) {
	m := &mockRagService{OnStream: func(ctx context.Context, req commonModels.QueryRequest) (<-chan commonModels.StreamEvent, error) {
		return streamOf(
			commonModels.StreamEvent{Type: commonModels.StreamToken, Text: "Hel"},
			commonModels.StreamEvent{Type: commonModels.StreamToken, Text: "lo"},
			commonModels.StreamEvent{Type: commonModels.StreamDone, ModelUsed: "nvidia/llama3-chatqa-1.5-8b"},
		), nil
	}}
	h := NewHandler(m, nil, t.TempDir())
	rec := httptest.NewRecorder()

	h.QueryStreamHandler(rec, jsonRequest(t, http.MethodPost, "/query/stream", api.QueryRequest{Query: "hi", UserId: "u1"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	want := "event: token\ndata: {\"text\":\"Hel\"}\n\n" +
		"event: token\ndata: {\"text\":\"lo\"}\n\n" +
		"event: done\ndata: {\"model_used\":\"nvidia/llama3-chatqa-1.5-8b\"}\n\n"
	assert.Equal(t, want, rec.Body.String())
	assert.True(t, rec.Flushed)
}

func TestQueryStreamHandler_ErrorEvent(t *testing.T) {
	m := &mockRagService{OnStream: func(ctx context.Context, req commonModels.QueryRequest) (<-chan commonModels.StreamEvent, error) {
		return streamOf(
			commonModels.StreamEvent{Type: commonModels.StreamToken, Text: "par"},
			commonModels.StreamEvent{Type: commonModels.StreamError, Text: "Sorry"},
		), nil
	}}
	h := NewHandler(m, nil, t.TempDir())
	rec := httptest.NewRecorder()

	h.QueryStreamHandler(rec, jsonRequest(t, http.MethodPost, "/query/stream", api.QueryRequest{Query: "hi", UserId: "u1"}))

	body := rec.Body.String()
	assert.Equal(t, 1, strings.Count(body, "event: error"))
	assert.NotContains(t, body, "event: done")
	assert.True(t, strings.HasSuffix(body, "event: error\ndata: {\"message\":\"Sorry\"}\n\n"))
}

func TestQueryStreamHandler_ErrorBeforeStream(t *testing.T) {
	m := &mockRagService{OnStream: func(ctx context.Context, req commonModels.QueryRequest) (<-chan commonModels.StreamEvent, error) {
		return nil, ragErrors.ModelUnavailable("nvidia", "set NVIDIA_API_KEY", nil)
	}}
	h := NewHandler(m, nil, t.TempDir())
	rec := httptest.NewRecorder()

	h.QueryStreamHandler(rec, jsonRequest(t, http.MethodPost, "/query/stream", api.QueryRequest{Query: "hi", UserId: "u1"}))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, decodeError(t, rec).Error.Hint)
}

func TestPurgeHandler(t *testing.T) {
	for _, confirm := range []bool{true, false} {
		var gotConfirm bool
		m := &mockRagService{OnPurge: func(ctx context.Context, ownerId string, c bool) (commonModels.PurgeResult, error) {
			gotConfirm = c
			if !c {
				return commonModels.PurgeResult{}, nil
			}
			return commonModels.PurgeResult{Purged: true, Deleted: 7}, nil
		}}
		h := NewHandler(m, nil, t.TempDir())
		rec := httptest.NewRecorder()

		h.PurgeHandler(rec, jsonRequest(t, http.MethodPost, "/purge", api.PurgeRequest{UserId: "u1", Purge: confirm}))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, confirm, gotConfirm)
		var res api.PurgeResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		assert.Equal(t, confirm, res.Purged)
	}
}

func TestUploadHandler_Sync(t *testing.T) {
	var savedPath string
	m := &mockRagService{OnUpload: func(ctx context.Context, req commonModels.UploadRequest) (commonModels.UploadResult, error) {
		savedPath = req.Path
		data, err := os.ReadFile(req.Path)
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(data))
		assert.Equal(t, "u1", req.OwnerId)
		return commonModels.UploadResult{Filename: req.Filename, Chunks: 3}, nil
	}}
	h := NewHandler(m, nil, t.TempDir())
	rec := httptest.NewRecorder()

	h.UploadHandler(rec, multipartRequest(t, "/uploadfile", map[string]string{"user_id": "u1"}, "notes.txt", "hello world"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"filename":"notes.txt","chunks":3}`, rec.Body.String())
	_, err := os.Stat(savedPath)
	assert.True(t, os.IsNotExist(err), "temporary upload should be removed")
}

func TestUploadHandler_Async(t *testing.T) {
	jobs := newJobService()
	h := NewHandler(&mockRagService{}, jobs, t.TempDir())
	rec := httptest.NewRecorder()

	h.UploadHandler(rec, multipartRequest(t, "/uploadfile?async=true", map[string]string{"user_id": "u1"}, "notes.txt", "hello"))

	require.Equal(t, http.StatusAccepted, rec.Code)
	var res api.AsyncUploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "notes.txt", res.Filename)
	assert.Equal(t, "status/"+res.Id, res.StatusURL)

	queued := <-jobs.JobChannel
	assert.Equal(t, res.Id, queued.Id)
	assert.Equal(t, "u1", queued.Payload.OwnerId)
	_, err := os.Stat(queued.Payload.Path)
	assert.NoError(t, err, "queued upload must stay on disk for the worker")
}

func TestUploadHandler_Validation(t *testing.T) {
	tests := []struct {
		name     string
		req      *http.Request
		jobs     *job.Service
		wantCode int
	}{
		{"missing user id", multipartRequest(t, "/uploadfile", nil, "a.txt", "x"), nil, http.StatusBadRequest},
		{"missing file", multipartRequest(t, "/uploadfile", map[string]string{"user_id": "u1"}, "", ""), nil, http.StatusBadRequest},
		{"async without queue", multipartRequest(t, "/uploadfile?async=true", map[string]string{"user_id": "u1"}, "a.txt", "x"), nil, http.StatusServiceUnavailable},
		{"not multipart", httptest.NewRequest(http.MethodPost, "/uploadfile", strings.NewReader("raw")), nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&mockRagService{}, tt.jobs, t.TempDir())
			rec := httptest.NewRecorder()

			h.UploadHandler(rec, tt.req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestStatusHandler(t *testing.T) {
	jobs := newJobService()
	require.NoError(t, jobs.JobStore.SaveJob(context.Background(), jobModel.Job{
		Id:      "job-1",
		Status:  jobModel.JobStatusComplete,
		Payload: jobModel.IngestPayload{Filename: "a.pdf", Chunks: 4},
	}))
	h := NewHandler(&mockRagService{}, jobs, t.TempDir())
	r := chi.NewRouter()
	r.Get("/status/{id}", h.StatusHandler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status/job-1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var res api.JobResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "COMPLETE", res.Status)
	assert.Equal(t, 4, res.Chunks)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status/ghost", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestModelsHandler(t *testing.T) {
	h := NewHandler(&mockRagService{}, nil, t.TempDir())
	rec := httptest.NewRecorder()

	h.ModelsHandler(rec, httptest.NewRequest(http.MethodGet, "/models", nil))

	var res api.ModelsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	require.Len(t, res.Models, 1)
	assert.Equal(t, "chatqa-8b", res.Models[0].ShortName)
}
