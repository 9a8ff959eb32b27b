package sync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomkeeper/internal/history"
	"roomkeeper/internal/models"
	"roomkeeper/internal/reconcile"
	"roomkeeper/internal/registry"
	"roomkeeper/pkg/api"
)

// fakeClientAPI — ручная заглушка ClientAPI для тестов
type fakeClientAPI struct {
	mu         stdsync.Mutex
	fetchResp  *api.FetchResponse
	fetchErr   error
	fetchDelay time.Duration
	fetchCalls int
	pushErr    error
	pushCalls  int
	lastPush   api.PushRequest
}

func (f *fakeClientAPI) Fetch(ctx context.Context) (*api.FetchResponse, error) {
	f.mu.Lock()
	f.fetchCalls++
	delay := f.fetchDelay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if f.fetchResp == nil {
		return &api.FetchResponse{CurrentTimestamp: time.Now()}, nil
	}
	return f.fetchResp, nil
}

func (f *fakeClientAPI) Push(ctx context.Context, req api.PushRequest) (*api.PushResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushCalls++
	f.lastPush = req
	if f.pushErr != nil {
		return nil, f.pushErr
	}
	return &api.PushResponse{Accepted: len(req.Records)}, nil
}

func setupSyncService(client *fakeClientAPI) (Service, *registry.Registry, *history.Ledger) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := registry.New()
	ledger := history.New(history.DefaultMaxRecords)
	reconciler := reconcile.New("device-a", logger)
	return NewService(client, reg, ledger, reconciler, "device-a", logger), reg, ledger
}

func wireRecord(id, number, color string, lastModified time.Time, deviceID string) api.RoomRecord {
	ts := lastModified
	return api.RoomRecord{
		ID:           id,
		Number:       number,
		Color:        color,
		GreenAt:      &ts,
		DeviceID:     deviceID,
		LastModified: lastModified,
	}
}

func TestService_Sync_AppliesMergeResult(t *testing.T) {
	now := time.Now()
	client := &fakeClientAPI{
		fetchResp: &api.FetchResponse{
			Records: []api.RoomRecord{
				wireRecord("id-1", "302", "green", now, "device-b"),
			},
			CurrentTimestamp: now,
		},
	}
	svc, reg, ledger := setupSyncService(client)

	result, err := svc.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.FetchedRecords)
	assert.Equal(t, 1, result.AdoptedRooms)
	assert.False(t, result.Coalesced)

	// Комната принята в реестр, переход записан в журнал
	room, err := reg.Get("302")
	require.NoError(t, err)
	assert.Equal(t, models.ColorGreen, room.Color)

	records := ledger.Records()
	require.Len(t, records, 1)
	assert.Equal(t, models.ActionSyncUpdate, records[0].ActionType)

	// Слитое содержимое отправлено обратно
	assert.Equal(t, 1, client.pushCalls)
	assert.Equal(t, 1, result.PushedRooms)
	assert.Equal(t, "device-a", client.lastPush.DeviceID)
}

func TestService_Sync_FetchError(t *testing.T) {
	client := &fakeClientAPI{fetchErr: errors.New("connection refused")}
	svc, reg, _ := setupSyncService(client)

	_, err := svc.Sync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch failed")
	assert.Equal(t, 0, reg.Size())
	assert.Equal(t, 0, client.pushCalls)
}

func TestService_Sync_PushFailureKeepsMergedState(t *testing.T) {
	now := time.Now()
	client := &fakeClientAPI{
		fetchResp: &api.FetchResponse{
			Records: []api.RoomRecord{
				wireRecord("id-1", "302", "green", now, "device-b"),
			},
		},
		pushErr: errors.New("server unavailable"),
	}
	svc, reg, _ := setupSyncService(client)

	// Неудача push не откатывает примененное слияние
	result, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.AdoptedRooms)
	assert.Equal(t, 0, result.PushedRooms)
	assert.Equal(t, 1, reg.Size())
}

func TestService_Sync_MalformedRecordsAreCounted(t *testing.T) {
	now := time.Now()
	client := &fakeClientAPI{
		fetchResp: &api.FetchResponse{
			Records: []api.RoomRecord{
				{ID: "", Number: "30", Color: "magenta"}, // искаженная
				wireRecord("id-2", "305", "white", now, "device-b"),
			},
		},
	}
	svc, reg, _ := setupSyncService(client)

	result, err := svc.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.FetchedRecords)
	assert.Equal(t, 1, result.SkippedRecords)
	assert.Equal(t, 1, result.AdoptedRooms)
	assert.Equal(t, 1, reg.Size())
}

func TestService_Sync_CancelledContext(t *testing.T) {
	client := &fakeClientAPI{}
	svc, _, _ := setupSyncService(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Sync(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_Sync_CoalescesConcurrentRequests(t *testing.T) {
	client := &fakeClientAPI{fetchDelay: 50 * time.Millisecond}
	svc, _, _ := setupSyncService(client)

	var wg stdsync.WaitGroup
	start := make(chan struct{})

	results := make([]*Result, 2)
	errs := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = svc.Sync(context.Background())
		}(i)
	}

	close(start)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// Один запрос выполнил цикл(ы), второй был склеен
	coalesced := 0
	for _, result := range results {
		if result.Coalesced {
			coalesced++
		}
	}
	assert.Equal(t, 1, coalesced)

	// Склеенный запрос выполнился follow-up циклом, а не параллельно
	client.mu.Lock()
	fetchCalls := client.fetchCalls
	client.mu.Unlock()
	assert.Equal(t, 2, fetchCalls)
}
