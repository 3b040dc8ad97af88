package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"ftxwidget/pkg/logger"
	"ftxwidget/pkg/store"
	"ftxwidget/pkg/widget"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ActionRequest is the wire form of a dispatched action.
type ActionRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Server struct {
	store   *store.Store
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
	router  *mux.Router
	log     *logrus.Entry
}

func NewServer(st *store.Store, log *logrus.Entry) *Server {
	s := &Server{
		store:   st,
		clients: make(map[*websocket.Conn]bool),
		router:  mux.NewRouter(),
		log:     log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(logger.Middleware(s.log))
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/actions", s.handleAction).Methods(http.MethodPost)
	s.router.HandleFunc("/ws", s.handleWS)
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on port until ctx is cancelled.
func (s *Server) Start(ctx context.Context, port int) error {
	go s.listenToStore(ctx, s.store.Subscribe())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("port", port).Info("API server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeClients()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.State())
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	action, err := widget.DecodeAction(req.Type, req.Payload)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.store.Dispatch(action)
	writeJSON(w, http.StatusAccepted, map[string]string{"accepted": action.Type()})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Debug("websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	s.mu.Lock()
	err = conn.WriteJSON(store.Event{Type: store.EventInitial, State: s.store.State()})
	if err == nil {
		s.clients[conn] = true
	}
	s.mu.Unlock()
	if err != nil {
		return
	}

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var req ActionRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.log.WithError(err).Warn("malformed websocket message")
			continue
		}
		action, err := widget.DecodeAction(req.Type, req.Payload)
		if err != nil {
			s.log.WithError(err).Warn("rejected websocket action")
			continue
		}
		s.store.Dispatch(action)
	}
}

func (s *Server) listenToStore(ctx context.Context, sub store.Subscriber) {
	defer s.store.Unsubscribe(sub)

	for {
		select {
		case event := <-sub:
			s.broadcast(event)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) broadcast(event store.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.clients {
		if err := client.WriteJSON(event); err != nil {
			_ = client.Close()
			delete(s.clients, client)
		}
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		_ = client.Close()
		delete(s.clients, client)
	}
}
