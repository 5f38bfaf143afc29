package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hearthline/hearth-core/internal/audit"
	"github.com/hearthline/hearth-core/internal/auth"
	"github.com/hearthline/hearth-core/internal/dashboard"
	"github.com/hearthline/hearth-core/internal/device"
	"github.com/hearthline/hearth-core/internal/infrastructure/config"
	"github.com/hearthline/hearth-core/internal/infrastructure/logging"
	"github.com/hearthline/hearth-core/internal/infrastructure/mqtt"
	"github.com/hearthline/hearth-core/internal/room"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	WS        config.WebSocketConfig
	WebUI     config.WebUIConfig
	Sessions  *auth.Manager
	Rooms     *room.Service
	Devices   *device.Service
	Dashboard *dashboard.Service
	AuditRepo audit.Repository // optional: audit trail disabled when nil
	MQTT      *mqtt.Client     // optional: entity events also published over MQTT
	Hub       *Hub             // optional: created on Start() when nil
	Logger    *logging.Logger
	Version   string
}

// Server is the HTTP API server for Hearth.
//
// It manages the HTTP listener, routes, middleware, WebSocket hub, and
// the async audit writer. The server is created with New() and started
// with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	webuiCfg  config.WebUIConfig
	sessions  *auth.Manager
	rooms     *room.Service
	devices   *device.Service
	dashboard *dashboard.Service
	auditRepo audit.Repository
	mqtt      *mqtt.Client
	logger    *logging.Logger
	version   string

	server  *http.Server
	hub     *Hub
	tickets *ticketStore
	auditCh chan *audit.Entry
	topics  mqtt.Topics
	cancel  context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if deps.Rooms == nil || deps.Devices == nil || deps.Dashboard == nil {
		return nil, fmt.Errorf("room, device, and dashboard services are required")
	}

	return &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		webuiCfg:  deps.WebUI,
		sessions:  deps.Sessions,
		rooms:     deps.Rooms,
		devices:   deps.Devices,
		dashboard: deps.Dashboard,
		auditRepo: deps.AuditRepo,
		mqtt:      deps.MQTT,
		hub:       deps.Hub,
		logger:    deps.Logger,
		version:   deps.Version,
		tickets:   newTicketStore(),
	}, nil
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub, the ticket cleanup loop, the async
// audit writer, and the session identity relay, then launches the HTTP
// listener in a background goroutine. The server is stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	go s.hub.Run(srvCtx)

	go s.tickets.cleanLoop(srvCtx)

	if s.auditRepo != nil {
		s.auditCh = make(chan *audit.Entry, auditChanSize)
		go s.drainAuditLog(srvCtx)
	}

	go s.relayIdentityChanges(srvCtx)

	router := s.buildRouter()

	readTimeout := time.Duration(s.cfg.Timeouts.Read) * time.Second
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// relayIdentityChanges forwards session identity changes to WebSocket
// clients subscribed to session.changed.
func (s *Server) relayIdentityChanges(ctx context.Context) {
	ch, cancel := s.sessions.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case identity, ok := <-ch:
			if !ok {
				return
			}
			s.hub.Broadcast(ChannelSessionChanged, map[string]any{
				"identity": identity,
				"loading":  s.sessions.Loading(),
			})
		}
	}
}

// broadcastEntityEvent pushes an entity change to the owner's WebSocket
// clients and, when MQTT is connected, mirrors it to the per-user event
// topic.
func (s *Server) broadcastEntityEvent(userID, channel, entity string, payload any) {
	s.hub.BroadcastToOwner(userID, channel, payload)

	if s.mqtt != nil && s.mqtt.IsConnected() {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		if err := s.mqtt.PublishJSON(s.topics.Events(userID, entity), data); err != nil {
			s.logger.Debug("mqtt event publish failed", "error", err, "entity", entity)
		}
	}
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Cancel background goroutines (hub, ticket cleanup, audit writer)
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
