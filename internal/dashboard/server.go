package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/satwatch/lnbits-tracker/internal/config"
	"github.com/satwatch/lnbits-tracker/internal/lnbits"
	"github.com/satwatch/lnbits-tracker/internal/monitor"
	"github.com/satwatch/lnbits-tracker/internal/storage"
)

// PayLinkClient resolves the configured LNURLp pay link
type PayLinkClient interface {
	GetPayLink(ctx context.Context, id string) (*lnbits.PayLink, error)
}

// StatusSource exposes the engine state for display. The dashboard
// only reads; it never writes snapshot state.
type StatusSource interface {
	Status() monitor.Status
}

// Server is the donations live-ticker API
type Server struct {
	cfg     *config.Config
	storage *storage.Storage
	wallet  PayLinkClient
	status  StatusSource
	webhook http.Handler // optional telegram webhook route
	log     *slog.Logger

	server *http.Server
}

// NewServer creates a new dashboard server. webhook may be nil when
// the bot runs in long-polling mode.
func NewServer(cfg *config.Config, store *storage.Storage, wallet PayLinkClient, status StatusSource, webhook http.Handler, log *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		storage: store,
		wallet:  wallet,
		status:  status,
		webhook: webhook,
		log:     log,
	}
}

// Handler builds the route table
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/donations", s.handleDonations).Methods(http.MethodGet)
	r.HandleFunc("/api/donations/{id:[0-9]+}/{action:like|dislike}", s.handleVote).Methods(http.MethodPost)
	r.HandleFunc("/donations/updates", s.handleUpdates).Methods(http.MethodGet)
	r.HandleFunc("/donations/qr", s.handleQR).Methods(http.MethodGet)
	if s.webhook != nil {
		r.Handle("/telegram/webhook", s.webhook).Methods(http.MethodPost)
	}

	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}).Handler(r)
}

// Start starts the dashboard server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.AppHost, s.cfg.AppPort),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.log.Info("starting dashboard server", "addr", s.server.Addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
	}()

	return s.server.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	total, err := s.storage.TotalDonations()
	if err != nil {
		s.log.Error("total donations", "error", err)
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	resp := map[string]any{
		"latest_balance":  s.status.Status(),
		"total_donations": total,
	}

	if addr, lnurl := s.payLinkDetails(r.Context()); addr != "" {
		resp["lightning_address"] = addr
		resp["lnurl"] = lnurl
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := s.storage.ListDonations()
	if err != nil {
		s.log.Error("list donations", "error", err)
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	if donations == nil {
		donations = []storage.Donation{}
	}

	total, err := s.storage.TotalDonations()
	if err != nil {
		s.log.Error("total donations", "error", err)
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	type donationView struct {
		ID       int64  `json:"id"`
		Amount   int64  `json:"amount"`
		Memo     string `json:"memo"`
		Date     string `json:"date"`
		Likes    int64  `json:"likes"`
		Dislikes int64  `json:"dislikes"`
	}

	views := make([]donationView, 0, len(donations))
	for _, d := range donations {
		views = append(views, donationView{
			ID:       d.ID,
			Amount:   d.AmountSats,
			Memo:     d.Memo,
			Date:     d.CreatedAt.UTC().Format(time.RFC3339),
			Likes:    d.Likes,
			Dislikes: d.Dislikes,
		})
	}

	resp := map[string]any{
		"total_donations": total,
		"donations":       views,
	}

	if addr, lnurl := s.payLinkDetails(r.Context()); addr != "" {
		resp["lightning_address"] = addr
		resp["lnurl"] = lnurl
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid donation id")
		return
	}

	err = s.storage.Vote(id, vars["action"] == "like")
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "donation not found")
		return
	}
	if err != nil {
		s.log.Error("vote", "error", err, "donation_id", id)
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpdates(w http.ResponseWriter, r *http.Request) {
	last, err := s.storage.LastDonationAt()
	if err != nil {
		s.log.Error("last donation", "error", err)
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	resp := map[string]any{"last_update": nil}
	if !last.IsZero() {
		resp["last_update"] = last.UTC().Format(time.RFC3339)
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	if s.cfg.PayLinkID == "" {
		s.writeError(w, http.StatusNotFound, "no pay link configured")
		return
	}

	link, err := s.wallet.GetPayLink(r.Context(), s.cfg.PayLinkID)
	if err != nil {
		s.log.Error("fetch pay link", "error", err)
		s.writeError(w, http.StatusBadGateway, "pay link unavailable")
		return
	}

	png, err := qrcode.Encode(link.LNURL, qrcode.Medium, 256)
	if err != nil {
		s.log.Error("encode qr", "error", err)
		s.writeError(w, http.StatusInternalServerError, "qr encoding failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// payLinkDetails resolves the lightning address and LNURL for display,
// best-effort: the ticker still renders without them.
func (s *Server) payLinkDetails(ctx context.Context) (address, lnurl string) {
	if s.cfg.PayLinkID == "" {
		return "", ""
	}

	link, err := s.wallet.GetPayLink(ctx, s.cfg.PayLinkID)
	if err != nil {
		s.log.Warn("fetch pay link", "error", err)
		return "", ""
	}

	username := link.Username
	if username == "" {
		username = "unknown"
	}

	return username + "@" + s.cfg.Domain(), link.LNURL
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}
