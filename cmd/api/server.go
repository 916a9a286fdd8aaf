package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/mcclellann/telecare/pkg/answer"
	"github.com/mcclellann/telecare/pkg/billing"
	"github.com/mcclellann/telecare/pkg/catalog"
	"github.com/mcclellann/telecare/pkg/router"
	"github.com/mcclellann/telecare/pkg/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Server holds the services behind the HTTP API.
type Server struct {
	billing  *billing.Service
	catalog  *catalog.Service
	router   *router.Router
	composer *answer.Composer
	storage  store.Storage // Keep a reference to the storage to close it
	log      *logrus.Logger
}

func NewServer(s store.Storage, b *billing.Service, composer *answer.Composer, l *logrus.Logger) *Server {
	c := catalog.NewService(s, l)
	return &Server{
		billing:  b,
		catalog:  c,
		router:   router.New(b, c),
		composer: composer,
		storage:  s,
		log:      l,
	}
}

// Routes returns the API handler with middleware applied.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/chat", s.chatHandler).Methods("POST")
	r.HandleFunc("/plans", s.listPlansHandler).Methods("GET")
	r.HandleFunc("/plans/{id}", s.getPlanHandler).Methods("GET")
	r.HandleFunc("/bills/{mobile}", s.getBillsHandler).Methods("GET")
	r.HandleFunc("/payments/{mobile}", s.getPaymentsHandler).Methods("GET")
	r.HandleFunc("/pay", s.payHandler).Methods("POST")
	r.HandleFunc("/status", s.statusHandler).Methods("GET")
	r.HandleFunc("/health", healthHandler).Methods("GET")

	r.Use(s.recoverMiddleware, s.logMiddleware, corsMiddleware)
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

type chatResponse struct {
	answer.Answer
	Intent router.Intent `json:"intent"`
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
		APIKey  string `json:"apiKey"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "No message provided")
		return
	}

	routed := s.router.Route(req.Message)
	s.log.WithField("intent", routed.Intent).Debug("routed chat message")

	ans := s.composer.Answer(r.Context(), answer.Request{
		Query:   routed.Query,
		Prompt:  routed.Prompt,
		Context: routed.Context,
		APIKey:  req.APIKey,
	})
	respondJSON(w, http.StatusOK, chatResponse{Answer: ans, Intent: routed.Intent})
}

func (s *Server) listPlansHandler(w http.ResponseWriter, r *http.Request) {
	var plans any
	switch strings.ToLower(r.URL.Query().Get("type")) {
	case "prepaid":
		plans = s.catalog.PrepaidPlans("")
	case "postpaid":
		plans = s.catalog.PostpaidPlans()
	case "popular":
		plans = s.catalog.PopularPlans()
	default:
		plans = s.catalog.AllPlans()
	}
	respondJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

func (s *Server) getPlanHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	plan, ok := s.catalog.PlanByID(vars["id"])
	if !ok {
		respondError(w, http.StatusNotFound, "Plan not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"plan": plan})
}

func (s *Server) getBillsHandler(w http.ResponseWriter, r *http.Request) {
	mobile := mux.Vars(r)["mobile"]

	bills := s.billing.ListBills(mobile)
	respondJSON(w, http.StatusOK, map[string]any{
		"mobile":        mobile,
		"all_bills":     bills,
		"pending_bills": billing.Pending(bills),
		"total_due":     billing.TotalDue(bills),
	})
}

func (s *Server) getPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	mobile := mux.Vars(r)["mobile"]

	respondJSON(w, http.StatusOK, map[string]any{
		"mobile":   mobile,
		"payments": s.billing.ListPayments(mobile),
	})
}

func (s *Server) payHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mobile        string          `json:"mobile"`
		BillID        string          `json:"bill_id"`
		Amount        decimal.Decimal `json:"amount"`
		PaymentMethod string          `json:"payment_method"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Mobile == "" || req.BillID == "" || req.Amount.IsZero() {
		respondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	result := s.billing.Pay(req.Mobile, req.BillID, req.Amount, req.PaymentMethod)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.composer.Status())
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("OK"))
}
