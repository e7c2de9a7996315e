package ws

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/tic-tac-toe-machine/internal/domain"
	"go.uber.org/zap"
)

func (s *server) serveWs(w http.ResponseWriter, r *http.Request) {
	clientUuid := strings.TrimSpace(r.Header.Get(domain.ClientUuidHeader))
	if clientUuid == "" {
		clientUuid = uuid.NewString()
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error(err.Error())
		return
	}
	s.logger.Info("new connection", zap.String("client", clientUuid))
	client := newClient(conn, clientUuid)
	defer func() {
		_ = client.Close()
	}()
	if err := s.hub.Handle(r.Context(), client); err != nil {
		s.logger.Error(err.Error())
	}
}

func (s *server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	resp := domain.HealthCheckResponse{
		Status:  "ok",
		Clients: s.hub.Clients(),
		Seq:     s.hub.State().Seq,
	}
	s.writeJson(w, resp)
}

func (s *server) currentState(w http.ResponseWriter, _ *http.Request) {
	s.writeJson(w, s.hub.State())
}

func (s *server) writeJson(w http.ResponseWriter, v any) {
	data, err := jsoniter.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		s.logger.Warn(err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		s.logger.Warn(err.Error())
	}
}
