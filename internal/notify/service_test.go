package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskbeacon/internal/channel"
	"taskbeacon/internal/dispatch"
	"taskbeacon/internal/signal"
	"taskbeacon/internal/store"
)

func newService(t *testing.T, endpoint string, schema channel.Schema) *Service {
	t.Helper()
	resolver, err := channel.NewResolver(map[string]channel.Descriptor{
		"main": {Endpoint: endpoint, Schema: schema},
	}, "main")
	require.NoError(t, err)

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "deliveries.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return &Service{
		Resolver:   resolver,
		Dispatcher: dispatch.New(2 * time.Second),
		Store:      s,
	}
}

func TestNotify_ExtractsDispatchesAndRecords(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"code":0}`))
	}))
	defer srv.Close()

	svc := newService(t, srv.URL, channel.SchemaStructuredHook)

	res, err := svc.Notify(context.Background(), Request{
		Text:     "请部署这个服务到生产环境",
		Response: "部署完成，服务已启动",
		Duration: "2分钟",
	})
	require.NoError(t, err)

	assert.True(t, res.Outcome.OK)
	assert.Equal(t, "main", res.Channel)
	assert.Equal(t, signal.StatusSuccess, res.Signal.Status)
	assert.Equal(t, 120, res.Signal.DurationSec)
	assert.Equal(t, float64(120), got["duration_sec"])

	recs, err := svc.Store.ListDeliveries(store.DeliveryFilter{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].OK)
	assert.Equal(t, "main", recs[0].Channel)
	assert.Equal(t, 1, recs[0].Attempts)
}

func TestNotify_UnknownChannel(t *testing.T) {
	t.Parallel()

	svc := newService(t, "http://127.0.0.1:0", channel.SchemaPlainText)

	_, err := svc.Notify(context.Background(), Request{Text: "hi", Channel: "ghost"})
	assert.Error(t, err)

	recs, err := svc.Store.ListDeliveries(store.DeliveryFilter{})
	require.NoError(t, err)
	assert.Empty(t, recs, "nothing dispatched, nothing recorded")
}

func TestNotify_PrebuiltSignalSkipsExtraction(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":0}`))
	}))
	defer srv.Close()

	svc := newService(t, srv.URL, channel.SchemaPlainText)

	sig := signal.TaskSignal{
		TaskName:  "session wrap-up",
		Status:    signal.StatusFailed,
		TaskType:  signal.TypeCustom,
		Summary:   "3 interactions",
		Timestamp: time.Now(),
	}
	res, err := svc.Notify(context.Background(), Request{Signal: &sig})
	require.NoError(t, err)
	assert.Equal(t, "session wrap-up", res.Signal.TaskName)
	assert.Equal(t, signal.StatusFailed, res.Signal.Status)
}

func TestNotify_RecordsFailureWithDiagnostic(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := newService(t, srv.URL, channel.SchemaGenericPush)

	res, err := svc.Notify(context.Background(), Request{Text: "check disk usage"})
	require.NoError(t, err, "dispatch failures are outcomes, not errors")
	assert.False(t, res.Outcome.OK)
	assert.Equal(t, dispatch.FailureChannel, res.Outcome.Failure)

	recs, err := svc.Store.ListDeliveries(store.DeliveryFilter{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.False(t, recs[0].OK)
	assert.Equal(t, "channel", recs[0].Failure)
	assert.Contains(t, recs[0].Diagnostic, "502")
}
