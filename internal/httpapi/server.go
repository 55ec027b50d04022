// Package httpapi exposes the assistant and the event store over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"etkinlik-bot/internal/assistant"
	"etkinlik-bot/internal/events"
	"etkinlik-bot/internal/metrics"
	"etkinlik-bot/internal/storage"
)

const defaultEventsLimit = 50

type answerer interface {
	Retrieve(ctx context.Context, text string, topK int) assistant.Reply
}

// Options configures the server beyond its collaborators. With TrustProxy
// the chat rate limit keys on the first X-Forwarded-For address instead of
// the peer address.
type Options struct {
	Addr         string
	TopK         int
	StoreTimeout time.Duration
	RatePerSec   float64
	RateBurst    int
	TrustProxy   bool
	Metrics      *metrics.Metrics
}

type clientLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

type Server struct {
	engine   answerer
	store    events.Store
	recorder storage.Recorder
	metrics  *metrics.Metrics
	opts     Options
	server   *http.Server
	now      func() time.Time

	mu       sync.Mutex
	limiters map[string]*clientLimiter
}

func New(engine answerer, store events.Store, recorder storage.Recorder, opts Options) *Server {
	if opts.TopK <= 0 {
		opts.TopK = assistant.DefaultTopK
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 5 * time.Second
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 1
	}
	s := &Server{
		engine:   engine,
		store:    store,
		recorder: recorder,
		metrics:  opts.Metrics,
		opts:     opts,
		now:      time.Now,
		limiters: make(map[string]*clientLimiter),
	}
	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.HandleFunc("/api/events/{id}", s.handleEvent)
	mux.HandleFunc("/api/cities", s.handleDistinct("city", "cities"))
	mux.HandleFunc("/api/categories", s.handleDistinct("category", "categories"))
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", s.metrics.Handler())
	return withCORS(mux)
}

// Start blocks serving requests. It returns nil after Shutdown.
func (s *Server) Start() error {
	log.Printf("🌐 Starting HTTP API on http://%s", s.opts.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type chatResponse struct {
	Success bool           `json:"success"`
	Answer  string         `json:"answer,omitempty"`
	Tier    string         `json:"tier,omitempty"`
	Sources []events.Event `json:"sources,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !s.allow(s.clientIP(r)) {
		writeError(w, http.StatusTooManyRequests, "Too many requests")
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	log.Printf("🌐 Web chat message: %q", msg)
	s.metrics.RequestReceived(storage.ChannelHTTP)
	reply := s.engine.Retrieve(r.Context(), msg, s.opts.TopK)

	if s.recorder != nil {
		if err := s.recorder.AppendInteraction(storage.Interaction{
			Timestamp:         s.now().UTC(),
			Channel:           storage.ChannelHTTP,
			UserMessage:       msg,
			AssistantResponse: reply.Text,
			Tier:              reply.Tier,
			SourceCount:       len(reply.Sources),
		}); err != nil {
			log.Printf("⚠️ Failed to record interaction: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Success: true,
		Answer:  reply.Text,
		Tier:    reply.Tier,
		Sources: reply.Sources,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listEvents(w, r)
	case http.MethodPost:
		s.createEvent(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := events.Filter{
		City:     strings.ToLower(q.Get("city")),
		Category: strings.ToLower(q.Get("category")),
		DateFrom: q.Get("start_date"),
		DateTo:   q.Get("end_date"),
		Limit:    defaultEventsLimit,
	}
	if f.City == "all" {
		f.City = ""
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		f.Limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.StoreTimeout)
	defer cancel()
	evs, err := s.store.Find(ctx, f)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if evs == nil {
		evs = []events.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(evs), "events": evs})
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	writer, ok := s.store.(events.Writer)
	if !ok {
		writeError(w, http.StatusMethodNotAllowed, "Store is read-only")
		return
	}
	var ev events.Event
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 256<<10)).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if msg := normalizeEvent(&ev); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if ev.Price == "" {
		ev.Price = "Ücretsiz"
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.StoreTimeout)
	defer cancel()
	var err error
	if editor, ok := s.store.(events.Editor); ok {
		ev, err = editor.Create(ctx, ev)
	} else {
		err = writer.InsertMany(ctx, []events.Event{ev})
	}
	if err != nil {
		s.storeError(w, err)
		return
	}
	log.Printf("➕ Event created: %s (%s, %s)", ev.Title, ev.City, ev.Date)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "event": ev})
}

// normalizeEvent checks the required fields and lowercases city and
// category. It returns the client error message, or "" when ev is valid.
func normalizeEvent(ev *events.Event) string {
	for _, f := range []struct{ name, value string }{
		{"title", ev.Title}, {"city", ev.City}, {"date", ev.Date}, {"category", ev.Category},
	} {
		if strings.TrimSpace(f.value) == "" {
			return "Missing field: " + f.name
		}
	}
	if _, err := time.Parse(events.DateLayout, ev.Date); err != nil {
		return "date must be YYYY-MM-DD"
	}
	ev.City = strings.ToLower(ev.City)
	ev.Category = strings.ToLower(ev.Category)
	return ""
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	editor, ok := s.store.(events.Editor)
	if !ok {
		writeError(w, http.StatusMethodNotAllowed, "Store does not support single event access")
		return
	}
	id := r.PathValue("id")
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.StoreTimeout)
	defer cancel()

	switch r.Method {
	case http.MethodGet:
		ev, err := editor.FindByID(ctx, id)
		if err != nil {
			s.storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "event": ev})
	case http.MethodPut:
		ev, err := editor.FindByID(ctx, id)
		if err != nil {
			s.storeError(w, err)
			return
		}
		// Fields missing from the body keep their stored values.
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 256<<10)).Decode(&ev); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		ev.ID = id
		if msg := normalizeEvent(&ev); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		if err := editor.Update(ctx, ev); err != nil {
			s.storeError(w, err)
			return
		}
		log.Printf("✏️ Event updated: %s (%s)", ev.Title, id)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "event": ev})
	case http.MethodDelete:
		if err := editor.Delete(ctx, id); err != nil {
			s.storeError(w, err)
			return
		}
		log.Printf("🗑️ Event deleted: %s", id)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Event deleted"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleDistinct(field, key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), s.opts.StoreTimeout)
		defer cancel()
		values, err := s.store.Distinct(ctx, field)
		if err != nil {
			s.storeError(w, err)
			return
		}
		if values == nil {
			values = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, key: values})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": s.now().Format(time.RFC3339),
	})
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, events.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	log.Printf("❌ Event store error: %v", err)
	if errors.Is(err, events.ErrUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "Event store is not available")
		return
	}
	writeError(w, http.StatusInternalServerError, "Event store error")
}

// allow reports whether the client may send another chat message. A zero
// rate disables limiting.
func (s *Server) allow(client string) bool {
	if s.opts.RatePerSec <= 0 {
		return true
	}
	s.mu.Lock()
	cl, ok := s.limiters[client]
	if !ok {
		cl = &clientLimiter{lim: rate.NewLimiter(rate.Limit(s.opts.RatePerSec), s.opts.RateBurst)}
		s.limiters[client] = cl
	}
	cl.seen = s.now()
	s.mu.Unlock()
	return cl.lim.Allow()
}

// SweepLimiters forgets clients not seen for idle and returns how many were
// removed. A forgotten client starts again with a full burst.
func (s *Server) SweepLimiters(idle time.Duration) int {
	cutoff := s.now().Add(-idle)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for client, cl := range s.limiters {
		if cl.seen.Before(cutoff) {
			delete(s.limiters, client)
			removed++
		}
	}
	return removed
}

func (s *Server) clientIP(r *http.Request) string {
	if s.opts.TrustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
