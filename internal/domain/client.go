package domain

import (
	"github.com/pkg/errors"
)

var (
	ErrConnectionClosed  = errors.New("connection closed")
	ErrEmptyMessage      = errors.New("empty message")
	ErrMalformedMessage  = errors.New("malformed message")
	ErrUnexpectedMessage = errors.New("unexpected message type")
)

const (
	ClientUuidHeader = "X-Client-Key"
)

type messageType byte

const (
	StateMessage = messageType(iota)
	PlayMessage
	ResetMessage
)

type Message struct {
	Type    messageType
	Payload any `json:",omitempty"`
}

// PlayPayload keeps Cell as a pointer so a missing index is told apart from cell 0.
type PlayPayload struct {
	Cell   *int `json:"cell"`
	Player Cell `json:"player"`
}

type HealthCheckResponse struct {
	Status  string `json:"status"`
	Clients int64  `json:"clients"`
	Seq     uint64 `json:"seq"`
}

type Client interface {
	WriteMessage(msg Message) error
	ReadMessage() (Message, error)
	Uuid() string
	Close() error
}
