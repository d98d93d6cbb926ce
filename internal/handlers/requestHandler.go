package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/akolanti/ragrouter/internal/adapter"
	"github.com/akolanti/ragrouter/internal/adapter/utils"
	"github.com/akolanti/ragrouter/internal/api"
	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/domain/commonModels"
	"github.com/akolanti/ragrouter/internal/domain/jobModel"
	"github.com/akolanti/ragrouter/internal/domain/ragErrors"
	"github.com/akolanti/ragrouter/internal/job"
	"github.com/akolanti/ragrouter/internal/rag"
	"github.com/akolanti/ragrouter/pkg/logger_i"
)

// Handler serves the HTTP surface over the RAG service and the ingest queue.
type Handler struct {
	rag       rag.Service
	jobs      *job.Service
	uploadDir string
	logger    *logger_i.Logger
}

// NewHandler wires the handlers. jobs may be nil, which disables async uploads.
// An empty uploadDir stores uploads under ./temporary_data.
func NewHandler(ragService rag.Service, jobService *job.Service, uploadDir string) *Handler {
	return &Handler{
		rag:       ragService,
		jobs:      jobService,
		uploadDir: uploadDir,
		logger:    logger_i.NewLogger("RequestHandler"),
	}
}

// HealthHandler godoc
// @Summary      Health check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       / [get]
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// UploadHandler godoc
// @Summary      Upload a document
// @Description  Extracts, chunks and embeds the file for the given user. With async=true the file is queued and a job id is returned.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file     formData  file    true   "PDF, DOCX, ODT, RTF or text file"
// @Param        user_id  formData  string  true   "Owner of the document"
// @Param        async    query     bool    false  "Queue the upload instead of waiting"
// @Success      200  {object}  api.UploadResponse
// @Success      202  {object}  api.AsyncUploadResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      503  {object}  api.ErrorResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /uploadfile [post]
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := h.logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "File too large or bad request")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warn("Couldn't remove multipart temp files", "err", err)
		}
	}()

	ownerId := strings.TrimSpace(r.FormValue("user_id"))
	if ownerId == "" {
		writeDomainError(w, ragErrors.InvalidInput("user_id is required", nil))
		return
	}
	async, _ := strconv.ParseBool(r.FormValue("async"))
	if async && h.jobs == nil {
		writeDomainError(w, ragErrors.Configuration("async uploads are disabled", "retry without async=true", nil))
		return
	}

	fileReader, fileMetadata, err := r.FormFile("file")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	filename := filepath.Base(fileMetadata.Filename)
	if filename == "." || filename == string(filepath.Separator) {
		writeDomainError(w, ragErrors.InvalidInput("filename is required", nil))
		return
	}

	targetDir, err := getTargetDirectory(h.uploadDir)
	if err != nil {
		log.Error("Couldn't get target directory", "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	path, err := saveUpload(targetDir, fileReader, filename)
	if err != nil {
		log.Error("Couldn't save upload", "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	contentType := fileMetadata.Header.Get("Content-Type")

	if async {
		queued := h.jobs.Enqueue(r.Context(), utils.GetNewUUID(), jobModel.IngestPayload{
			OwnerId:     ownerId,
			Filename:    filename,
			ContentType: contentType,
			Path:        path,
		})
		writeJsonResponse(w, http.StatusAccepted, adapter.ToAsyncUploadResponse(queued))
		return
	}

	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("Couldn't remove upload", "path", path, "err", err)
		}
	}()
	res, err := h.rag.Upload(r.Context(), commonModels.UploadRequest{
		OwnerId:     ownerId,
		Filename:    filename,
		ContentType: contentType,
		Path:        path,
	})
	if err != nil {
		log.Warn("Upload failed", "filename", filename, "err", err)
		writeDomainError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.UploadResponse{Filename: res.Filename, Chunks: res.Chunks})
}

// QueryHandler godoc
// @Summary      Ask a question
// @Description  Retrieves the user's chunks, routes to a model and returns a grounded answer.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.QueryRequest  true  "Query, owner and routing hints"
// @Success      200  {object}  api.QueryResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      503  {object}  api.ErrorResponse  "Model or vector store unavailable, with a hint"
// @Router       /query [post]
func (h *Handler) QueryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	var req api.QueryRequest
	if err := decodeJson(w, r, &req); err != nil {
		h.logger.FromContext(r.Context()).Warn("Bad query request", "err", err)
		WriteErrorResponse(w, http.StatusBadRequest, "Bad Request")
		return
	}

	res, err := h.rag.Query(r.Context(), adapter.ToQueryRequest(req))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToQueryResponse(res))
}

// QueryStreamHandler godoc
// @Summary      Ask a question, streaming the answer
// @Description  Server-sent events: token events, then a single done or error event.
// @Tags         Query
// @Accept       json
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        request  body      api.QueryRequest  true  "Query, owner and routing hints"
// @Success      200  {object}  api.StreamToken
// @Failure      400  {object}  api.ErrorResponse
// @Failure      503  {object}  api.ErrorResponse
// @Router       /query/stream [post]
func (h *Handler) QueryStreamHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := h.logger.FromContext(r.Context())

	var req api.QueryRequest
	if err := decodeJson(w, r, &req); err != nil {
		log.Warn("Bad stream request", "err", err)
		WriteErrorResponse(w, http.StatusBadRequest, "Bad Request")
		return
	}

	events, err := h.rag.StreamQuery(r.Context(), adapter.ToQueryRequest(req))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	flusher, _ := w.(http.Flusher)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for ev := range events {
		if err := writeEvent(w, ev); err != nil {
			// client went away; the producer stops on context cancellation
			log.Warn("Stream write failed", "err", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev commonModels.StreamEvent) error {
	var payload interface{}
	switch ev.Type {
	case commonModels.StreamToken:
		payload = api.StreamToken{Text: ev.Text}
	case commonModels.StreamDone:
		payload = api.StreamDone{ModelUsed: ev.ModelUsed}
	default:
		payload = api.StreamError{Message: ev.Text}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}

// PurgeHandler godoc
// @Summary      Delete all of a user's documents
// @Description  Nothing is deleted unless purge is true.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.PurgeRequest  true  "Owner and confirmation flag"
// @Success      200  {object}  api.PurgeResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      503  {object}  api.ErrorResponse
// @Router       /purge [post]
func (h *Handler) PurgeHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	var req api.PurgeRequest
	if err := decodeJson(w, r, &req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Bad Request")
		return
	}

	res, err := h.rag.Purge(r.Context(), req.UserId, req.Purge)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.logger.FromContext(r.Context()).Info("Purge handled", "owner", req.UserId, "purged", res.Purged, "deleted", res.Deleted)
	writeJsonResponse(w, http.StatusOK, api.PurgeResponse{Purged: res.Purged, Deleted: res.Deleted})
}

// ModelsHandler godoc
// @Summary      List routable models
// @Tags         Query
// @Produce      json
// @Success      200  {object}  api.ModelsResponse
// @Router       /models [get]
func (h *Handler) ModelsHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.ModelsResponse{Models: h.rag.Models()})
}
