package server

import (
	"net/http"
	"time"

	"github.com/getmockd/registrar/pkg/httputil"
)

// HealthResponse is the body of HealthPath.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    int64  `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    int64(s.Uptime().Seconds()),
	})
}
