package handlers

import (
	"net/http"

	"github.com/akolanti/ragrouter/internal/adapter"
	"github.com/akolanti/ragrouter/internal/adapter/utils"
)

// StatusHandler godoc
// @Summary      Get ingest job status
// @Description  Retrieves the current status of an async upload using its job id.
// @Tags         Job Status
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse    "The current status of the job"
// @Failure      404  {object}  api.ErrorResponse  "Job not found"
// @Router       /status/{id} [get]
func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	h.logger.FromContext(r.Context()).Debug("Get Status Request", "jobId", idString)

	if h.jobs == nil {
		WriteErrorResponse(w, http.StatusNotFound, "Job not found")
		return
	}
	result, isFound := h.jobs.Status(r.Context(), idString)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}
