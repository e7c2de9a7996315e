package webapi

import (
	"context"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/tic-tac-toe-machine/internal/domain"
	"github.com/pkg/errors"
)

const (
	clientTimeout       = 5 * time.Second
	stateEndpoint       = "/state"
	healthCheckEndpoint = "/health"
)

type repository struct {
	cli *http.Client
}

func New() repository {
	return repository{
		cli: &http.Client{Timeout: clientTimeout},
	}
}

func (r repository) State(ctx context.Context, addr string) (*domain.StateUpdate, error) {
	result := new(domain.StateUpdate)
	if err := r.get(ctx, addr+stateEndpoint, result); err != nil {
		return nil, errors.WithMessagef(err, "call http endpoint '%s'", stateEndpoint)
	}
	return result, nil
}

func (r repository) HealthCheck(ctx context.Context, addr string) (*domain.HealthCheckResponse, error) {
	result := new(domain.HealthCheckResponse)
	if err := r.get(ctx, addr+healthCheckEndpoint, result); err != nil {
		return nil, errors.WithMessagef(err, "call http endpoint '%s'", healthCheckEndpoint)
	}
	return result, nil
}

func (r repository) get(ctx context.Context, url string, result any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.WithMessage(err, "new get request")
	}
	resp, err := r.cli.Do(request)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected response status '%s'", resp.Status)
	}
	if err := jsoniter.NewDecoder(resp.Body).Decode(result); err != nil {
		return errors.WithMessage(err, "decode json response body")
	}
	return nil
}
