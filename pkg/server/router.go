package server

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/agentoven/mcpuibridge/internal/host"
	"github.com/agentoven/mcpuibridge/internal/mcpserver"
	"github.com/agentoven/mcpuibridge/internal/uiresource"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// newRouter builds the HTTP surface the way this codebase wires chi/cors
// throughout: RequestID/RealIP/Recoverer/Compress, then the app's own
// middleware, then CORS.
func newRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   parseCORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler)
	r.Get("/version", versionHandler(s))

	r.Route("/resources", func(r chi.Router) {
		r.Get("/", listResourcesHandler(s))
		r.Get("/*", getResourceHandler(s))
		r.Post("/list", httpWireHandler(s, "resources.list"))
		r.Post("/read", httpWireHandler(s, "resources.read"))
	})

	r.Route("/tools", func(r chi.Router) {
		r.Get("/", listToolsHandler(s))
		r.Post("/{toolName}/execute", executeToolHandler(s))
		r.Post("/list", httpWireHandler(s, "tools.list"))
		r.Post("/execute", httpWireHandler(s, "tools.execute"))
	})

	r.Get("/ws", wsHandler(s))
	r.Get("/mcp", wsWireHandler(s))

	r.Get("/assets/ui_interactive.js", scriptHandler())

	return r
}

func parseCORSOrigins() []string {
	raw := os.Getenv("MCPUI_CORS_ORIGINS")
	if raw == "" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy", "service": "mcp-ui-bridge"})
}

func versionHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"version": s.Config.Version, "service": "mcp-ui-bridge"})
	}
}

func listResourcesHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(s.MCPServer.ListResources())
	}
}

func getResourceHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uri := chi.URLParam(r, "*")
		resource, err := s.MCPServer.GetResource(uri)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		if resource.MimeType == uiresource.MimeRemoteDOM {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resource)
			return
		}

		script, err := host.InteractiveScript()
		if err != nil {
			log.Warn().Err(err).Msg("host: failed to load injected script")
		}
		rendered, err := host.RenderResource(resource, script)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rendered)
	}
}

func listToolsHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(s.MCPServer.GetAvailableTools())
	}
}

func executeToolHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		toolName := chi.URLParam(r, "toolName")

		var args map[string]any
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&args)
		}

		result := s.MCPServer.ExecuteTool(r.Context(), mcpserver.ExecuteRequest{Name: toolName, Arguments: args})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}
}

// wsHandler upgrades to a WebSocket, attaches a host.WSFrame keyed by a
// generated frame id, and runs the read loop feeding every inbound message
// through Host.HandleMessage until the connection drops.
func wsHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("host: websocket upgrade failed")
			return
		}

		frameID := uuid.NewString()
		frame := host.NewWSFrame(frameID, origin, conn)
		s.Host.Attach(frame)
		defer func() {
			s.Host.Detach(frameID)
			_ = frame.Close()
		}()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			result := s.Host.HandleMessage(r.Context(), frameID, origin, raw)
			if !result.OK {
				log.Debug().Str("frame", frameID).Str("kind", string(result.Kind)).Msg("host: action rejected")
			}
		}
	}
}

func scriptHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		script, err := host.InteractiveScript()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/javascript")
		_, _ = w.Write(script)
	}
}
