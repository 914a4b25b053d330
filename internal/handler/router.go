package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cureverse/cureverse/internal/handler/channel"
	"github.com/cureverse/cureverse/internal/handler/chat"
	"github.com/cureverse/cureverse/internal/handler/symptom"
	"github.com/cureverse/cureverse/internal/metrics"
	symptomModel "github.com/cureverse/cureverse/internal/model/symptom"
	chatService "github.com/cureverse/cureverse/internal/service/chat"
	"github.com/cureverse/cureverse/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(symptoms symptomModel.Store, chatSvc *chatService.Service, responder *channel.Responder, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Create handlers
	symptomHandler := symptom.New(symptoms)
	chatHandler := chat.New(chatSvc)
	wsHandler := channel.NewWebSocketHandler(responder, m)

	r.Route("/api", func(api chi.Router) {
		symptomHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	wsHandler.RegisterRoutes(r)

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	return r
}
