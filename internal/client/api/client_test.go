package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomkeeper/pkg/api"
)

func TestClient_Fetch(t *testing.T) {
	t.Run("Successful fetch", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Second)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/v1/rooms", r.URL.Path)

			w.Header().Set("Content-Type", "application/json")
			err := json.NewEncoder(w).Encode(api.FetchResponse{
				Records: []api.RoomRecord{
					{ID: "id-1", Number: "302", Color: "green", DeviceID: "device-b", LastModified: now},
				},
				CurrentTimestamp: now,
			})
			assert.NoError(t, err)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		resp, err := client.Fetch(context.Background())
		require.NoError(t, err)

		require.Len(t, resp.Records, 1)
		assert.Equal(t, "302", resp.Records[0].Number)
		assert.True(t, resp.CurrentTimestamp.Equal(now))
	})

	t.Run("Server error with message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Message: "internal server error"})
		}))
		defer server.Close()

		client := NewClient(server.URL)
		_, err := client.Fetch(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "internal server error")
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("Malformed response body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		_, err := client.Fetch(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal")
	})
}

func TestClient_Push(t *testing.T) {
	t.Run("Successful push", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v1/rooms", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req api.PushRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "device-a", req.DeviceID)

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(api.PushResponse{Accepted: len(req.Records)})
		}))
		defer server.Close()

		client := NewClient(server.URL)
		resp, err := client.Push(context.Background(), api.PushRequest{
			Records: []api.RoomRecord{
				{ID: "id-1", Number: "302", Color: "green", DeviceID: "device-a", LastModified: time.Now()},
			},
			DeviceID: "device-a",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Accepted)
	})

	t.Run("Cancelled context aborts the request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(io.Discard, r.Body)
			<-r.Context().Done()
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		client := NewClient(server.URL)
		_, err := client.Push(ctx, api.PushRequest{DeviceID: "device-a"})
		require.Error(t, err)
	})

	t.Run("Unreachable server", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1")
		_, err := client.Push(context.Background(), api.PushRequest{DeviceID: "device-a"})
		require.Error(t, err)
	})
}
