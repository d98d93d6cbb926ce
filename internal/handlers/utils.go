package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/akolanti/ragrouter/internal/adapter"
	"github.com/akolanti/ragrouter/pkg/logger_i"
)

const maxJSONBodySize = 1 << 20

var utilLogger = logger_i.NewLogger("HandlerUtils")

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are already out, nothing left to tell the client
		utilLogger.Error("Error encoding response", "err", err)
	}
}

func decodeJson(w http.ResponseWriter, r *http.Request, target interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			utilLogger.Error("Couldn't close the request body", "err", err)
		}
	}(body)
	return json.NewDecoder(body).Decode(target)
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		utilLogger.FromContext(ctx).Warn("context error", "err", ctx.Err())
		return false
	}
	return true
}

// WriteErrorResponse writes a failure detected by the HTTP layer itself.
func WriteErrorResponse(w http.ResponseWriter, httpCode int, message string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(message, httpCode))
}

// writeDomainError writes an error returned by the service layer.
func writeDomainError(w http.ResponseWriter, err error) {
	code, body := adapter.ErrorToHTTP(err)
	writeJsonResponse(w, code, body)
}

func getTargetDirectory(configured string) (string, error) {
	targetDir := configured
	if targetDir == "" {
		root, err := os.Getwd()
		if err != nil {
			return "", err
		}
		targetDir = filepath.Join(root, "temporary_data")
	}
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", err
	}
	return targetDir, nil
}

// saveUpload copies the multipart file into dir under a collision-free name and returns its path.
func saveUpload(dir string, src multipart.File, originalName string) (string, error) {
	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), originalName)
	path := filepath.Join(dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return path, nil
}
