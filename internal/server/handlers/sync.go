package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"roomkeeper/internal/models"
	"roomkeeper/pkg/api"
)

// RoomStorage определяет интерфейс для работы с записями комнат
type RoomStorage interface {
	SaveRecord(ctx context.Context, record *models.RemoteRoomRecord) (bool, error)
	GetAllRecords(ctx context.Context) ([]*models.RemoteRoomRecord, error)
}

// SyncHandler handles room fetch and push requests
type SyncHandler struct {
	logger  *slog.Logger
	storage RoomStorage
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(logger *slog.Logger, storage RoomStorage) *SyncHandler {
	return &SyncHandler{
		logger:  logger,
		storage: storage,
	}
}

// HandleRooms обрабатывает GET (выборка) и POST (отправка) запросы
func (h *SyncHandler) HandleRooms(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleFetch(w, r)
	case http.MethodPost:
		h.handlePush(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleFetch обрабатывает GET /api/v1/rooms
// Возвращает конечный снимок всех записей, включая tombstones
func (h *SyncHandler) handleFetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.storage.GetAllRecords(ctx)
	if err != nil {
		h.logger.Error("Failed to get records", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	apiRecords := make([]api.RoomRecord, 0, len(records))
	for _, record := range records {
		apiRecords = append(apiRecords, toWire(record))
	}

	h.logger.Info("Fetch request served", "records", len(apiRecords))

	h.writeJSON(w, http.StatusOK, api.FetchResponse{
		Records:          apiRecords,
		CurrentTimestamp: time.Now(),
	})
}

// handlePush обрабатывает POST /api/v1/rooms
// Каждая запись применяется по правилу LWW; искаженные записи
// отклоняются, остальной пакет применяется
func (h *SyncHandler) handlePush(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid push request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp := api.PushResponse{}
	for i := range req.Records {
		record := fromWire(&req.Records[i])

		if err := record.Validate(); err != nil {
			h.logger.Warn("Rejecting malformed record",
				"record_id", record.ID,
				"room_number", record.Number,
				"error", err)
			resp.Rejected++
			continue
		}

		saved, err := h.storage.SaveRecord(ctx, record)
		if err != nil {
			h.logger.Error("Failed to save record",
				"record_id", record.ID,
				"error", err)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if saved {
			resp.Accepted++
		} else {
			// Существующая запись новее - LWW отклонил
			resp.Rejected++
		}
	}

	h.logger.Info("Push request served",
		"device_id", req.DeviceID,
		"accepted", resp.Accepted,
		"rejected", resp.Rejected)

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *SyncHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *SyncHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, api.ErrorResponse{Message: message})
}

// toWire конвертирует модель в wire-формат
func toWire(r *models.RemoteRoomRecord) api.RoomRecord {
	return api.RoomRecord{
		ID:            r.ID,
		Number:        r.Number,
		Color:         string(r.Color),
		NoneAt:        r.NoneAt,
		RedAt:         r.RedAt,
		GreenAt:       r.GreenAt,
		BlueAt:        r.BlueAt,
		WhiteAt:       r.WhiteAt,
		AvailableTime: r.AvailableTime,
		IsMarked:      r.IsMarked,
		IsCompleted:   r.IsCompleted,
		IsDeepCleaned: r.IsDeepCleaned,
		IsDeleted:     r.IsDeleted,
		DeviceID:      r.DeviceID,
		LastModified:  r.LastModified,
	}
}

// fromWire конвертирует wire-формат в модель
func fromWire(r *api.RoomRecord) *models.RemoteRoomRecord {
	return &models.RemoteRoomRecord{
		ID:            r.ID,
		Number:        r.Number,
		Color:         models.RoomColor(r.Color),
		NoneAt:        r.NoneAt,
		RedAt:         r.RedAt,
		GreenAt:       r.GreenAt,
		BlueAt:        r.BlueAt,
		WhiteAt:       r.WhiteAt,
		AvailableTime: r.AvailableTime,
		IsMarked:      r.IsMarked,
		IsCompleted:   r.IsCompleted,
		IsDeepCleaned: r.IsDeepCleaned,
		IsDeleted:     r.IsDeleted,
		DeviceID:      r.DeviceID,
		LastModified:  r.LastModified,
	}
}
