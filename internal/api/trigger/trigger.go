// Package trigger exposes the HTTP entry point that drains one batch of the event queue.
package trigger

import (
	"context"
	"io"
	"net/http"

	"automation-worker/internal/api/common"
	"automation-worker/internal/domain"
	"automation-worker/internal/worker"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// maxBodyBytes limits the optional options body.
const maxBodyBytes = 4 << 10

// BatchRunner runs one drain cycle.
type BatchRunner interface {
	ProcessBatch(ctx context.Context, opts worker.Options) (domain.BatchSummary, error)
}

// ProcessResponse is the body of a completed trigger call.
type ProcessResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Processed int    `json:"processed"`
	Failed    *int   `json:"failed,omitempty"`
	Total     *int   `json:"total,omitempty"`
}

// ErrorResponse is returned when the queue could not be read.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// parseOptions leest batchSize en maxRetries uit de body. Ontbrekende, niet-numerieke
// of ongeldige waarden vallen terug op de defaults van de worker.
func parseOptions(body []byte) worker.Options {
	var opts worker.Options
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return opts
	}
	if v := gjson.GetBytes(body, "batchSize"); v.Type == gjson.Number && v.Num == float64(int(v.Num)) {
		opts.BatchSize = int(v.Num)
	}
	if v := gjson.GetBytes(body, "maxRetries"); v.Type == gjson.Number && v.Num == float64(int(v.Num)) {
		opts.MaxRetries = int(v.Num)
	}
	return opts
}

// HandleProcess claims and processes one batch of pending events.
func HandleProcess(runner BatchRunner, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			log.Warn("could not read trigger body, using defaults", zap.Error(err))
		}
		opts := parseOptions(body)

		summary, err := runner.ProcessBatch(r.Context(), opts)
		if err != nil {
			common.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
				Success: false,
				Error:   err.Error(),
			}, log)
			return
		}

		if summary.Total == 0 {
			common.WriteJSON(w, http.StatusOK, ProcessResponse{
				Success:   true,
				Message:   "No pending events",
				Processed: 0,
			}, log)
			return
		}

		log.Info("batch processed",
			zap.String("triggered_by", common.GetSubjectFromContext(r.Context())),
			zap.Int("processed", summary.Processed),
			zap.Int("failed", summary.Failed),
			zap.Int("total", summary.Total),
		)
		common.WriteJSON(w, http.StatusOK, ProcessResponse{
			Success:   true,
			Processed: summary.Processed,
			Failed:    &summary.Failed,
			Total:     &summary.Total,
		}, log)
	}
}
