package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type recordingCollector struct {
	statuses []int
}

func (c *recordingCollector) RecordSubscriptionAccepted()       {}
func (c *recordingCollector) RecordSubscriptionRejected(string) {}
func (c *recordingCollector) RecordSubscriptionFailed(string)   {}
func (c *recordingCollector) RecordHTTPStatus(code int)         { c.statuses = append(c.statuses, code) }

func TestMetricsMiddleware_RecordsStatus(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    int
	}{
		{
			name:    "暗黙の200",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			want:    http.StatusOK,
		},
		{
			name: "明示的な400",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &recordingCollector{}
			h := NewMetricsMiddleware(c)(tt.handler)

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

			if len(c.statuses) != 1 || c.statuses[0] != tt.want {
				t.Errorf("statuses = %v, want [%d]", c.statuses, tt.want)
			}
		})
	}
}
