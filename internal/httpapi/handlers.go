package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cardtrack/internal/core"
	"cardtrack/internal/prefs"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleBusy(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"busy": s.session.Busy.Busy()})
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Store.Dashboard())
}

func (s *Server) handleListCards(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Store.Cards())
}

func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	var card core.Card
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(card.CardName) == "" {
		writeError(w, http.StatusBadRequest, "card name is required")
		return
	}
	if !s.session.Mutations.AddCard(r.Context(), card) {
		writeError(w, http.StatusBadGateway, "the remote store rejected the card")
		return
	}
	writeJSON(w, http.StatusCreated, s.session.Store.Cards())
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "card id is required")
		return
	}
	if !s.session.Mutations.DeleteCard(r.Context(), id) {
		writeError(w, http.StatusBadGateway, "the card could not be deleted")
		return
	}
	writeJSON(w, http.StatusOK, s.session.Store.Cards())
}

func (s *Server) handleListTransactions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Store.TransactionViews())
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var txn core.Transaction
	if err := json.NewDecoder(r.Body).Decode(&txn); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if txn.CardID == "" {
		writeError(w, http.StatusBadRequest, "card id is required")
		return
	}
	if !s.session.Mutations.AddTransaction(r.Context(), txn) {
		writeError(w, http.StatusBadGateway, "the remote store rejected the transaction")
		return
	}
	writeJSON(w, http.StatusCreated, s.session.Store.TransactionViews())
}

type paymentQuoteRequest struct {
	CardID          string     `json:"CardID"`
	Amount          core.Money `json:"Amount"`
	PromptPayNumber string     `json:"PromptPayNumber"`
}

type paymentQuoteResponse struct {
	State   string `json:"state"`
	Payload string `json:"payload,omitempty"`
}

func (s *Server) handlePaymentQuote(w http.ResponseWriter, r *http.Request) {
	var req paymentQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.session.Payments.RequestQuote(r.Context(), req.CardID, req.Amount, req.PromptPayNumber)

	// The workflow absorbs missing inputs and remote failures silently; the
	// resulting state tells the client which happened.
	writeJSON(w, http.StatusOK, paymentQuoteResponse{
		State:   string(s.session.Payments.State()),
		Payload: s.session.Payments.QuotedCode(),
	})
}

func (s *Server) handlePaymentConfirm(w http.ResponseWriter, r *http.Request) {
	s.session.Payments.Confirm(r.Context())
	writeJSON(w, http.StatusOK, paymentQuoteResponse{
		State: string(s.session.Payments.State()),
	})
}

type themeBody struct {
	Theme string `json:"theme"`
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	if s.prefs == nil {
		writeError(w, http.StatusNotFound, "preferences are not configured")
		return
	}
	theme, err := s.prefs.Theme(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not read theme")
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: theme})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	if s.prefs == nil {
		writeError(w, http.StatusNotFound, "preferences are not configured")
		return
	}
	var body themeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.prefs.SetTheme(r.Context(), body.Theme); err != nil {
		if errors.Is(err, prefs.ErrInvalidTheme) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "could not save theme")
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: body.Theme})
}
