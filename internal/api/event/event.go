package event

import (
	"automation-worker/internal/api/common"
	"automation-worker/internal/store"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// EnqueueRequest is the body of a new event.
type EnqueueRequest struct {
	EventType string          `json:"event_type" validate:"required,max=100"`
	Payload   json.RawMessage `json:"payload"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// HandleEnqueue zet een nieuw event in de wachtrij van een project.
func HandleEnqueue(storer store.Storer, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
		if err != nil {
			common.WriteJSONError(w, http.StatusBadRequest, "Ongeldig project ID", log)
			return
		}

		var req EnqueueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.WriteJSONError(w, http.StatusBadRequest, "Ongeldige request body", log)
			return
		}
		req.EventType = strings.TrimSpace(req.EventType)

		if err := validate.Struct(req); err != nil {
			common.WriteJSONError(w, http.StatusBadRequest, "event_type is verplicht (max 100 tekens)", log)
			return
		}
		// Een payload is altijd een JSON object
		if len(req.Payload) > 0 && !gjson.ParseBytes(req.Payload).IsObject() {
			common.WriteJSONError(w, http.StatusBadRequest, "payload moet een JSON object zijn", log)
			return
		}

		ev, err := storer.Enqueue(r.Context(), store.EnqueueParams{
			ProjectID: projectID,
			EventType: req.EventType,
			Payload:   req.Payload,
		})
		if err != nil {
			log.Error("could not enqueue event",
				zap.String("project_id", projectID.String()),
				zap.String("event_type", req.EventType),
				zap.Error(err),
			)
			common.WriteJSONError(w, http.StatusInternalServerError, "Kon event niet opslaan", log)
			return
		}

		log.Info("event enqueued",
			zap.String("event_id", ev.ID.String()),
			zap.String("project_id", projectID.String()),
			zap.String("event_type", ev.EventType),
			zap.String("enqueued_by", common.GetSubjectFromContext(r.Context())),
		)
		common.WriteJSON(w, http.StatusCreated, ev, log)
	}
}
