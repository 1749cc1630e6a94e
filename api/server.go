package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"themeplane/model"
	"themeplane/preset"
	"themeplane/theme"
)

const maxBodyBytes = 1 << 20

// Options configures the handler chain built by Server.Handler.
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

type Server struct {
	resolver *theme.Resolver
	presets  *preset.Store
	ws       *WSConnectionManager
	logger   *zap.Logger
	opts     Options
	upgrader websocket.Upgrader
}

func NewServer(resolver *theme.Resolver, presets *preset.Store, ws *WSConnectionManager, logger *zap.Logger, opts Options) *Server {
	if resolver == nil {
		resolver = theme.NewResolver()
	}
	if ws == nil {
		ws = NewWSConnectionManager()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		resolver: resolver,
		presets:  presets,
		ws:       ws,
		logger:   logger,
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/options", s.handleOptions)
	mux.HandleFunc("/api/colors", s.handleColors)
	mux.HandleFunc("/api/presets", s.handlePresets)
	mux.HandleFunc("/api/presets/", s.handlePresetByName)
	mux.HandleFunc("/api/ws", s.handleWS)
	mux.Handle("/metrics", promhttp.Handler())
}

// Handler returns the registered routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	quiet := []string{"/api/health", "/metrics"}
	return Chain(mux,
		RequestIDMiddleware,
		RecoveryMiddleware(s.logger),
		LoggingMiddleware(s.logger, quiet),
		RateLimitMiddleware(s.opts.RateLimitRPS, s.opts.RateLimitBurst, quiet),
	)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	writeJSON(w, http.StatusOK, resp)
}

// ---------- options ----------

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	var use theme.Option

	switch r.Method {
	case http.MethodGet:
		values := r.URL.Query()["use"]
		switch len(values) {
		case 0:
		case 1:
			use = theme.Use(values[0])
		default:
			use = theme.UseList(values...)
		}
	case http.MethodPost:
		var req model.OptionsRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		use = req.Use
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
		return
	}

	writeJSON(w, http.StatusOK, s.optionsResponse(use))
}

func (s *Server) optionsResponse(use theme.Option) model.OptionsResponse {
	tokens := s.resolver.ResolveOptions(use)
	if tokens == nil {
		tokens = []string{}
	}
	return model.OptionsResponse{
		Tokens:    tokens,
		ClassName: s.resolver.ClassName(use),
	}
}

// ---------- colors ----------

func (s *Server) handleColors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req model.ColorsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	vars := s.resolveColors(req.Options, req.Style, req.TextTones)
	writeJSON(w, http.StatusOK, model.ColorsResponse{Vars: vars, CSS: vars.CSS()})
}

func (s *Server) resolveColors(options, style theme.Entries, textTones bool) *theme.Vars {
	var extra []theme.DeriveOption
	if textTones {
		extra = append(extra, theme.WithTextTones())
	}
	if len(style) == 0 {
		return s.resolver.ResolveColors(options, extra...)
	}
	return s.resolver.ResolveStyle(options, style, extra...)
}

// ---------- presets ----------

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if s.presets == nil {
		writeJSON(w, http.StatusOK, model.PresetList{Presets: []string{}})
		return
	}

	names, err := s.presets.List()
	if err != nil {
		s.logger.Error("list presets", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list presets")
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, model.PresetList{Presets: names})
}

func (s *Server) handlePresetByName(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/presets/")
	asCSS := strings.HasSuffix(name, ".css")
	name = strings.TrimSuffix(name, ".css")

	if s.presets == nil {
		writeError(w, http.StatusNotFound, "preset not found")
		return
	}
	entries, err := s.presets.Load(name)
	if err != nil {
		if errors.Is(err, preset.ErrNotFound) {
			writeError(w, http.StatusNotFound, "preset not found")
			return
		}
		s.logger.Error("load preset", zap.String("preset", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load preset")
		return
	}

	textTones := r.URL.Query().Get("textTones") == "true"
	vars := s.resolveColors(entries, nil, textTones)

	if asCSS {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, vars.Stylesheet(r.URL.Query().Get("selector")))
		return
	}
	writeJSON(w, http.StatusOK, model.ColorsResponse{Vars: vars, CSS: vars.CSS()})
}

// ---------- websocket ----------

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	id := s.ws.Add(conn)
	logger := s.logger.With(zap.String("conn_id", id))
	logger.Debug("websocket connected")

	defer func() {
		s.ws.Remove(id)
		conn.Close()
		logger.Debug("websocket disconnected")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("websocket read", zap.Error(err))
			}
			return
		}

		if err := s.ws.WriteJSON(id, s.handleWSMessage(data)); err != nil {
			logger.Warn("websocket write", zap.Error(err))
			return
		}
	}
}

func (s *Server) handleWSMessage(data []byte) model.WSResponse {
	var req model.WSRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return model.WSResponse{Type: "error", Error: err.Error()}
	}

	if req.Use != nil {
		resp := s.optionsResponse(*req.Use)
		return model.WSResponse{ID: req.ID, Type: "options", Tokens: resp.Tokens, Class: resp.ClassName}
	}

	vars := s.resolveColors(req.Options, req.Style, req.TextTones)
	return model.WSResponse{ID: req.ID, Type: "colors", Vars: vars, CSS: vars.CSS()}
}

// ---------- helpers ----------

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
