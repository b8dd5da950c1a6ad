package statusboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goto/pulse/core/monitor"
	"github.com/goto/pulse/internal/errors"
)

const (
	EntityStatusBoard = "StatusBoard"

	sendTimeout = time.Second * 10
)

var (
	notifierType = "statusboard"

	sendCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name:        monitor.MetricStatusReportSend,
		ConstLabels: map[string]string{"type": notifierType},
	})

	sendErrCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name:        monitor.MetricStatusReportSendErr,
		ConstLabels: map[string]string{"type": notifierType},
	})
)

type statusPayload struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// Reporter posts computed verdicts to the status board.
type Reporter struct {
	endpoint string
	client   *http.Client
}

func NewReporter(endpoint string) *Reporter {
	return &Reporter{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		client:   &http.Client{Timeout: sendTimeout},
	}
}

// Send posts the verdict for one service. Any 2xx response is a success.
func (r *Reporter) Send(ctx context.Context, serviceID string, verdict monitor.Verdict) error {
	payload := statusPayload{
		StatusCode: int(verdict.StatusCode),
		Message:    verdict.Message,
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		sendErrCounter.Inc()
		return errors.InternalError(EntityStatusBoard, "failed to encode status payload", err)
	}

	statusURL := r.endpoint + "/status/" + serviceID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, statusURL, bytes.NewBuffer(payloadJSON))
	if err != nil {
		sendErrCounter.Inc()
		return errors.InternalError(EntityStatusBoard, "failed to build status request for "+statusURL, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		sendErrCounter.Inc()
		return errors.InternalError(EntityStatusBoard, "failed to send status to "+statusURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		sendErrCounter.Inc()
		return errors.InternalError(EntityStatusBoard,
			fmt.Sprintf("status board returned %d for %s", resp.StatusCode, statusURL), nil)
	}

	sendCounter.Inc()
	return nil
}
