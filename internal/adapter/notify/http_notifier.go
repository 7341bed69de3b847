package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/courses-service/internal/domain"
)

// HTTPNotifier posts envelopes to {BaseURL}/v1/messages/{destination}.
// Sends run in the background; failures are logged and dropped.
type HTTPNotifier struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Log     *zap.Logger

	wg sync.WaitGroup
}

func NewHTTPNotifier(baseURL, apiKey string, timeout time.Duration, log *zap.Logger) *HTTPNotifier {
	return &HTTPNotifier{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: timeout},
		Log:     log,
	}
}

// Notify returns immediately. The send outlives ctx cancellation.
func (n *HTTPNotifier) Notify(ctx context.Context, destination, operationID string, message any) {
	log := n.Log.With(zap.String("destination", destination), zap.String("operation", operationID))

	env, err := domain.NewEnvelope(operationID, message)
	if err != nil {
		log.Error("encode notification", zap.Error(err))
		return
	}
	body, err := json.Marshal(env)
	if err != nil {
		log.Error("encode notification", zap.Error(err))
		return
	}

	sendCtx := context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.send(sendCtx, destination, body); err != nil {
			log.Warn("notification failed", zap.Error(err))
			return
		}
		log.Debug("notification sent")
	}()
}

func (n *HTTPNotifier) send(ctx context.Context, destination string, body []byte) error {
	url := fmt.Sprintf("%s/v1/messages/%s", n.BaseURL, destination)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", n.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("POST %s: status %d", url, resp.StatusCode)
	}
	return nil
}

// Close waits for in-flight sends.
func (n *HTTPNotifier) Close() {
	n.wg.Wait()
}

var _ domain.Notifier = (*HTTPNotifier)(nil)
