package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomkeeper/internal/models"
	"roomkeeper/pkg/api"
)

// fakeRoomStorage — ручная заглушка RoomStorage для тестов
type fakeRoomStorage struct {
	records    []*models.RemoteRoomRecord
	saveResult bool
	saveErr    error
	getAllErr  error
	saved      []*models.RemoteRoomRecord
}

func (f *fakeRoomStorage) SaveRecord(ctx context.Context, record *models.RemoteRoomRecord) (bool, error) {
	if f.saveErr != nil {
		return false, f.saveErr
	}
	f.saved = append(f.saved, record)
	return f.saveResult, nil
}

func (f *fakeRoomStorage) GetAllRecords(ctx context.Context) ([]*models.RemoteRoomRecord, error) {
	if f.getAllErr != nil {
		return nil, f.getAllErr
	}
	return f.records, nil
}

func validWireRecord(id, number string) api.RoomRecord {
	return api.RoomRecord{
		ID:           id,
		Number:       number,
		Color:        "green",
		DeviceID:     "device-a",
		LastModified: time.Now(),
	}
}

func TestSyncHandler_HandleRooms_Fetch(t *testing.T) {
	t.Run("Returns all records with server timestamp", func(t *testing.T) {
		now := time.Now()
		storage := &fakeRoomStorage{
			records: []*models.RemoteRoomRecord{
				{ID: "id-1", Number: "302", Color: models.ColorGreen, DeviceID: "device-b", LastModified: now},
				{ID: "id-2", Number: "305", Color: models.ColorRed, DeviceID: "device-b", LastModified: now, IsDeleted: true},
			},
		}
		handler := NewSyncHandler(setupTestLogger(), storage)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil)
		w := httptest.NewRecorder()
		handler.HandleRooms(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var resp api.FetchResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

		// Tombstones включены в выборку
		require.Len(t, resp.Records, 2)
		assert.True(t, resp.Records[1].IsDeleted)
		assert.False(t, resp.CurrentTimestamp.IsZero())
	})

	t.Run("Storage failure", func(t *testing.T) {
		storage := &fakeRoomStorage{getAllErr: errors.New("db locked")}
		handler := NewSyncHandler(setupTestLogger(), storage)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil)
		w := httptest.NewRecorder()
		handler.HandleRooms(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var errResp api.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
		assert.NotEmpty(t, errResp.Message)
	})
}

func TestSyncHandler_HandleRooms_Push(t *testing.T) {
	pushBody := func(t *testing.T, req api.PushRequest) *bytes.Reader {
		t.Helper()
		data, err := json.Marshal(req)
		require.NoError(t, err)
		return bytes.NewReader(data)
	}

	t.Run("Accepted and rejected records are counted", func(t *testing.T) {
		storage := &fakeRoomStorage{saveResult: true}
		handler := NewSyncHandler(setupTestLogger(), storage)

		body := pushBody(t, api.PushRequest{
			Records: []api.RoomRecord{
				validWireRecord("id-1", "302"),
				{ID: "", Number: "30", Color: "magenta"}, // искаженная
			},
			DeviceID: "device-a",
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/rooms", body)
		w := httptest.NewRecorder()
		handler.HandleRooms(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp api.PushResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, 1, resp.Accepted)
		assert.Equal(t, 1, resp.Rejected)

		// Искаженная запись не дошла до хранилища
		require.Len(t, storage.saved, 1)
		assert.Equal(t, "302", storage.saved[0].Number)
	})

	t.Run("LWW loss counts as rejected", func(t *testing.T) {
		storage := &fakeRoomStorage{saveResult: false}
		handler := NewSyncHandler(setupTestLogger(), storage)

		body := pushBody(t, api.PushRequest{
			Records:  []api.RoomRecord{validWireRecord("id-1", "302")},
			DeviceID: "device-a",
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/rooms", body)
		w := httptest.NewRecorder()
		handler.HandleRooms(w, req)

		var resp api.PushResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, 0, resp.Accepted)
		assert.Equal(t, 1, resp.Rejected)
	})

	t.Run("Invalid body", func(t *testing.T) {
		handler := NewSyncHandler(setupTestLogger(), &fakeRoomStorage{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/rooms", bytes.NewReader([]byte("not json")))
		w := httptest.NewRecorder()
		handler.HandleRooms(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Storage failure", func(t *testing.T) {
		storage := &fakeRoomStorage{saveErr: errors.New("db locked")}
		handler := NewSyncHandler(setupTestLogger(), storage)

		body := pushBody(t, api.PushRequest{
			Records:  []api.RoomRecord{validWireRecord("id-1", "302")},
			DeviceID: "device-a",
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/rooms", body)
		w := httptest.NewRecorder()
		handler.HandleRooms(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestSyncHandler_HandleRooms_MethodNotAllowed(t *testing.T) {
	handler := NewSyncHandler(setupTestLogger(), &fakeRoomStorage{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/rooms", nil)
	w := httptest.NewRecorder()
	handler.HandleRooms(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
