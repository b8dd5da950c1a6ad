package registry_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goto/salt/log"
	"github.com/stretchr/testify/assert"

	"github.com/goto/pulse/ext/registry"
)

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	logger := log.NewNoop()

	t.Run("ListSchedules", func(t *testing.T) {
		t.Run("pages through all schedule descriptors", func(t *testing.T) {
			var requestedOffsets []string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/schedules", r.URL.Path)
				offset := r.URL.Query().Get("offset")
				requestedOffsets = append(requestedOffsets, offset)

				if offset == "0" {
					fmt.Fprint(w, `{"total_entries": 3, "schedules": [{"id": "sched-a"}, {"id": "sched-b"}]}`)
					return
				}
				fmt.Fprint(w, `{"total_entries": 3, "schedules": [{"id": "sched-c", "paused": true}]}`)
			}))
			defer server.Close()

			auth, err := registry.NewRegistryAuth(server.URL, "")
			assert.NoError(t, err)
			reg := registry.NewRegistry(logger, registry.NewClient(), auth)

			schedules, err := reg.ListSchedules(ctx)
			assert.NoError(t, err)
			assert.Len(t, schedules, 3)
			assert.Equal(t, []string{"0", "2"}, requestedOffsets)
			assert.Equal(t, "sched-c", schedules[2].ID)
			assert.True(t, schedules[2].Paused)
		})
		t.Run("sends the auth token as basic auth", func(t *testing.T) {
			expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("user:pass"))
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, expected, r.Header.Get("Authorization"))
				fmt.Fprint(w, `{"total_entries": 0, "schedules": []}`)
			}))
			defer server.Close()

			auth, err := registry.NewRegistryAuth(server.URL, "user:pass")
			assert.NoError(t, err)
			reg := registry.NewRegistry(logger, registry.NewClient(), auth)

			schedules, err := reg.ListSchedules(ctx)
			assert.NoError(t, err)
			assert.Empty(t, schedules)
		})
		t.Run("returns error on non-2xx response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer server.Close()

			auth, err := registry.NewRegistryAuth(server.URL, "")
			assert.NoError(t, err)
			reg := registry.NewRegistry(logger, registry.NewClient(), auth)

			schedules, err := reg.ListSchedules(ctx)
			assert.Error(t, err)
			assert.Nil(t, schedules)
		})
	})

	t.Run("ListScheduleDescriptors", func(t *testing.T) {
		t.Run("normalizes entries and drops unparsable action times", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"total_entries": 1, "schedules": [{
					"id": "sched-a",
					"spec": {"intervals": [{"every_minutes": 30}], "cron_expressions": ["*/30 * * * *"]},
					"action": {"workflow_type": "order-sync", "task_queue": "dwh"},
					"info": {
						"recent_actions": [{"schedule_time": "2024-01-01T00:00:00Z"}, {"schedule_time": "oops"}],
						"future_action_times": ["2024-01-01T00:30:00Z"]
					}
				}]}`)
			}))
			defer server.Close()

			auth, err := registry.NewRegistryAuth(server.URL, "")
			assert.NoError(t, err)
			reg := registry.NewRegistry(logger, registry.NewClient(), auth)

			descriptors, err := reg.ListScheduleDescriptors(ctx)
			assert.NoError(t, err)
			assert.Len(t, descriptors, 1)
			assert.Equal(t, "order-sync", descriptors[0].WorkflowType)
			assert.Equal(t, "dwh", descriptors[0].TaskQueue)
			assert.Equal(t, []int{30}, descriptors[0].IntervalsMinutes)
			assert.Len(t, descriptors[0].RecentActionTimes, 1)
			assert.Len(t, descriptors[0].UpcomingActionTimes, 1)
		})
	})

	t.Run("SearchExecutions", func(t *testing.T) {
		t.Run("decodes executions and drops ids without a timestamp", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"executions": [
					{"id": "order-sync-2024-01-01T00:00:00Z-a", "status": 2, "status_name": "COMPLETED"},
					{"id": "order-sync-broken", "status": 1, "status_name": "RUNNING"}
				]}`)
			}))
			defer server.Close()

			auth, err := registry.NewRegistryAuth(server.URL, "")
			assert.NoError(t, err)
			reg := registry.NewRegistry(logger, registry.NewClient(), auth)

			executions, err := reg.SearchExecutions(ctx, `WorkflowType="order-sync"`)
			assert.NoError(t, err)
			assert.Len(t, executions, 1)
			assert.Equal(t, "order-sync-2024-01-01T00:00:00Z-a", executions[0].ID)
		})
	})

	t.Run("ListExecutions", func(t *testing.T) {
		t.Run("passes the visibility filter through", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/workflows", r.URL.Path)
				assert.Equal(t, `WorkflowType="order-sync"`, r.URL.Query().Get("query"))
				fmt.Fprint(w, `{"executions": [{"id": "order-sync-2024-01-01T00:00:00Z", "status": 2, "status_name": "COMPLETED"}]}`)
			}))
			defer server.Close()

			auth, err := registry.NewRegistryAuth(server.URL, "")
			assert.NoError(t, err)
			reg := registry.NewRegistry(logger, registry.NewClient(), auth)

			executions, err := reg.ListExecutions(ctx, `WorkflowType="order-sync"`)
			assert.NoError(t, err)
			assert.Len(t, executions, 1)
			assert.Equal(t, "COMPLETED", executions[0].StatusName)
		})
	})
}
