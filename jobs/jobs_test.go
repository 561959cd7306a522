package jobs_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/trainhub/trainhub/internal/jobs"
	"github.com/trainhub/trainhub/internal/shared"
	"github.com/trainhub/trainhub/jobs"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type(), Queue: jobs.QueueDefault}, nil
}

func (f *fakeEnqueuer) Close() error { return nil }

type fakeAuditStore struct {
	recorded  []shared.AuditLog
	retention time.Duration
	deleted   int64
	err       error
}

func (f *fakeAuditStore) Record(_ context.Context, entry shared.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, entry)
	return nil
}

func (f *fakeAuditStore) Prune(_ context.Context, olderThan time.Duration) (int64, error) {
	f.retention = olderThan
	return f.deleted, f.err
}

func sampleEntry() shared.AuditLog {
	return shared.AuditLog{
		ActorID:  4,
		Action:   shared.AuditActionDelete,
		Entity:   "contract",
		EntityID: "12",
		At:       time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestClientRecordEnqueuesAuditTask(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	client := jobs.NewClientWithEnqueuer(enqueuer)

	require.NoError(t, client.Record(context.Background(), sampleEntry()))
	require.Len(t, enqueuer.tasks, 1)
	assert.Equal(t, jobs.TaskAuditRecord, enqueuer.tasks[0].Type())

	var decoded shared.AuditLog
	require.NoError(t, json.Unmarshal(enqueuer.tasks[0].Payload(), &decoded))
	assert.Equal(t, sampleEntry(), decoded)

	assert.Error(t, client.Record(context.Background(), shared.AuditLog{}))
	assert.Len(t, enqueuer.tasks, 1)
}

func TestAuditRecordHandler(t *testing.T) {
	store := &fakeAuditStore{}
	job := jobs.NewAuditJob(store, time.Hour, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := jobs.NewAuditRecordTask(sampleEntry())
	require.NoError(t, err)
	require.NoError(t, job.HandleRecord(context.Background(), task))
	require.Len(t, store.recorded, 1)
	assert.Equal(t, "12", store.recorded[0].EntityID)

	err = job.HandleRecord(context.Background(), asynq.NewTask(jobs.TaskAuditRecord, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	store.err = errors.New("db down")
	err = job.HandleRecord(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestAuditPruneHandler(t *testing.T) {
	store := &fakeAuditStore{deleted: 3}
	job := jobs.NewAuditJob(store, 90*24*time.Hour, nil, nil)

	require.NoError(t, job.HandlePrune(context.Background(), asynq.NewTask(jobs.TaskAuditPrune, nil)))
	assert.Equal(t, 90*24*time.Hour, store.retention)

	task, err := jobs.NewAuditPruneTask(time.Hour)
	require.NoError(t, err)
	require.NoError(t, job.HandlePrune(context.Background(), task))
	assert.Equal(t, time.Hour, store.retention)

	unconfigured := jobs.NewAuditJob(store, 0, nil, nil)
	assert.ErrorIs(t, unconfigured.HandlePrune(context.Background(), asynq.NewTask(jobs.TaskAuditPrune, nil)), asynq.SkipRetry)
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return f.info, f.err
}

func TestJobsHealthEndpoint(t *testing.T) {
	serve := func(h *jobs.Handler) *httptest.ResponseRecorder {
		r := chi.NewRouter()
		r.Route("/jobs", h.MountRoutes)
		res := httptest.NewRecorder()
		r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
		return res
	}

	res := serve(jobs.NewHandler(nil, nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0}`, res.Body.String())

	res = serve(jobs.NewHandler(fakeInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 4}}, nil))
	assert.JSONEq(t, `{"queue":"default","pending":4}`, res.Body.String())

	res = serve(jobs.NewHandler(fakeInspector{err: errors.New("redis down")}, nil))
	assert.Equal(t, http.StatusServiceUnavailable, res.Code)
}
