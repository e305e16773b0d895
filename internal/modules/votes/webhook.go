package votes

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
)

// Embed color for the thank-you message.
const colorVote = 0x992D22

// WebhookServer receives vote notifications from the bot list. Each request
// must carry the shared secret in the Authorization header.
type WebhookServer struct {
	store   VoteStore
	auth    string
	session *discordgo.Session
	http    *http.Server
}

// NewWebhookServer creates a new WebhookServer. The session may be nil, in
// which case voters are not messaged.
func NewWebhookServer(store VoteStore, auth, listenAddr string, session *discordgo.Session) *WebhookServer {
	s := &WebhookServer{
		store:   store,
		auth:    auth,
		session: session,
	}

	router := mux.NewRouter()
	router.HandleFunc("/topggwebhook", s.handleVote).Methods(http.MethodPost)

	s.http = &http.Server{
		Addr:              listenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler, for tests.
func (s *WebhookServer) Handler() http.Handler {
	return s.http.Handler
}

// Start begins serving in a background goroutine.
func (s *WebhookServer) Start() {
	go func() {
		slog.Info("vote webhook listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("vote webhook server failed", "error", err)
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *WebhookServer) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type votePayload struct {
	User string `json:"user"`
	Type string `json:"type"`
}

func (s *WebhookServer) handleVote(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != s.auth {
		slog.Warn("unauthorized vote webhook request", "remote", r.RemoteAddr)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
		return
	}

	var payload votePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.User == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := s.store.RecordVote(r.Context(), payload.User, VoteTTL); err != nil {
		slog.Error("failed to record vote", "user", payload.User, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	slog.Info("user voted for the bot", "user", payload.User)

	s.thankVoter(payload.User)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// thankVoter messages the voter about the cooldown reduction. DM failures
// are expected for users with DMs closed.
func (s *WebhookServer) thankVoter(userID string) {
	if s.session == nil {
		return
	}

	channel, err := s.session.UserChannelCreate(userID)
	if err != nil {
		slog.Warn("failed to open DM channel", "user", userID, "error", err)
		return
	}

	_, err = s.session.ChannelMessageSendEmbed(channel.ID, &discordgo.MessageEmbed{
		Title:       "Thank you for voting!",
		Description: "You've gained a 50% cooldown reduction on all commands for 12 hours.",
		Color:       colorVote,
	})
	if err != nil {
		slog.Warn("failed to send DM", "user", userID, "error", err)
	}
}
