package domain

import (
	"context"

	"github.com/pkg/errors"
)

var ErrHubStopped = errors.New("hub is stopped")

type HubUseCase interface {
	Handle(ctx context.Context, client Client) error
	Send(ctx context.Context, event Event) error
	Subscribe() (<-chan StateUpdate, func())
	State() StateUpdate
	Clients() int64
}
