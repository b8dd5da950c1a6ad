package registry

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/goto/pulse/internal/errors"
)

const (
	EntityRegistry = "Registry"

	schedulesURL = "api/v1/schedules"
	workflowsURL = "api/v1/workflows"

	clientTimeout = time.Second * 30
)

type registryRequest struct {
	path   string
	method string
	query  string
	body   []byte
}

// RegistryAuth carries the registry host and an optional user:password token
// sent as basic auth.
type RegistryAuth struct {
	host  string
	token string
}

func NewRegistryAuth(host, token string) (RegistryAuth, error) {
	if host == "" {
		return RegistryAuth{}, errors.InvalidArgument(EntityRegistry, "registry host is empty")
	}
	return RegistryAuth{host: host, token: token}, nil
}

type Client interface {
	Invoke(ctx context.Context, r registryRequest, auth RegistryAuth) ([]byte, error)
}

type apiClient struct {
	client *http.Client
}

func NewClient() Client {
	return &apiClient{
		client: &http.Client{Timeout: clientTimeout},
	}
}

func (a *apiClient) Invoke(ctx context.Context, r registryRequest, auth RegistryAuth) ([]byte, error) {
	spanCtx, span := startChildSpan(ctx, "Invoke")
	defer span.End()

	endpoint := strings.TrimSuffix(auth.host, "/") + "/" + r.path
	if r.query != "" {
		endpoint = endpoint + "?" + r.query
	}

	request, err := http.NewRequestWithContext(spanCtx, r.method, endpoint, bytes.NewBuffer(r.body))
	if err != nil {
		return nil, errors.InternalError(EntityRegistry, "failed to build request for "+endpoint, err)
	}
	request.Header.Set("Content-Type", "application/json")
	if auth.token != "" {
		request.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(auth.token)))
	}

	resp, err := a.client.Do(request)
	if err != nil {
		return nil, errors.InternalError(EntityRegistry, "failed to call registry "+endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.InternalError(EntityRegistry,
			fmt.Sprintf("registry returned status %d for %s", resp.StatusCode, endpoint), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.InternalError(EntityRegistry, "failed to read registry response from "+endpoint, err)
	}
	return body, nil
}

func startChildSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	tracer := otel.Tracer("ext/registry")

	return tracer.Start(ctx, name)
}
