// Package api serves reports and validation results over HTTP as JSON, CSV,
// or XLSX.
package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/cleared-dev/cashbook/internal/buildinfo"
	"github.com/cleared-dev/cashbook/internal/engine"
	"github.com/cleared-dev/cashbook/internal/export"
	"github.com/cleared-dev/cashbook/internal/validation"
)

const formatJSON export.Format = "json"

// Handler serves the report endpoints of one engine.Service. now supplies
// the default year and as-of date.
type Handler struct {
	svc *engine.Service
	now func() time.Time
}

// NewRouter registers every endpoint under /businesses/{id}.
func NewRouter(svc *engine.Service, log zerolog.Logger, now func() time.Time) *mux.Router {
	if now == nil {
		now = time.Now
	}
	h := &Handler{svc: svc, now: now}

	router := mux.NewRouter()
	router.Use(RequestID, Logger(log), Recoverer)
	router.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	b := router.PathPrefix("/businesses/{id:[0-9]+}").Subrouter()
	b.HandleFunc("/reports/pl", h.profitAndLoss).Methods(http.MethodGet)
	b.HandleFunc("/reports/balance-sheet", h.balanceSheet).Methods(http.MethodGet)
	b.HandleFunc("/reports/tax", h.taxReport).Methods(http.MethodGet)
	b.HandleFunc("/validation/transfers", h.transfers).Methods(http.MethodGet)
	b.HandleFunc("/validation/transactions", h.transactions).Methods(http.MethodGet)
	b.HandleFunc("/validation/full-report", h.fullReport).Methods(http.MethodGet)
	b.HandleFunc("/balances", h.balances).Methods(http.MethodGet)
	return router
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (h *Handler) profitAndLoss(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parse(w, r)
	if !ok {
		return
	}
	rep, err := h.svc.GeneratePL(r.Context(), q.businessID, q.year)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.respond(w, r, rep, q.format, fmt.Sprintf("profit_loss_%d", q.year))
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parse(w, r)
	if !ok {
		return
	}
	rep, err := h.svc.GenerateBalanceSheet(r.Context(), q.businessID, q.year)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.respond(w, r, rep, q.format, fmt.Sprintf("balance_sheet_%d", q.year))
}

func (h *Handler) taxReport(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parse(w, r)
	if !ok {
		return
	}
	rep, err := h.svc.GenerateTaxReport(r.Context(), q.businessID, q.year)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.respond(w, r, rep, q.format, fmt.Sprintf("tax_report_%d", q.year))
}

func (h *Handler) transfers(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parse(w, r)
	if !ok {
		return
	}
	rep, err := h.svc.ValidateTransfers(r.Context(), q.businessID, q.year, q.month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.respond(w, r, rep, q.format, fmt.Sprintf("transfers_%d", q.year))
}

// transactions checks every year unless ?year is given.
func (h *Handler) transactions(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parse(w, r)
	if !ok {
		return
	}
	scope := validation.Scope{Month: q.month}
	if q.yearGiven {
		scope.Year = q.year
	}
	rep, err := h.svc.ValidateTransactions(r.Context(), q.businessID, scope, q.asOf)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.respond(w, r, rep, q.format, "transaction_findings")
}

func (h *Handler) fullReport(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parse(w, r)
	if !ok {
		return
	}
	rep, err := h.svc.FullValidation(r.Context(), q.businessID, q.year, q.asOf)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.respond(w, r, rep, q.format, fmt.Sprintf("validation_%d", q.year))
}

// balances includes every transaction unless ?as_of is given.
func (h *Handler) balances(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parse(w, r)
	if !ok {
		return
	}
	var asOf time.Time
	if q.asOfGiven {
		asOf = q.asOf
	}
	rep, err := h.svc.AccountBalances(r.Context(), q.businessID, asOf)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.respond(w, r, rep, q.format, "account_balances")
}

type query struct {
	businessID int64
	year       int
	yearGiven  bool
	month      int
	asOf       time.Time
	asOfGiven  bool
	format     export.Format
}

// parse reads the path and query parameters shared by every endpoint. It
// writes a 400 and returns false on malformed input.
func (h *Handler) parse(w http.ResponseWriter, r *http.Request) (query, bool) {
	now := h.now()
	q := query{year: now.Year(), asOf: now, format: formatJSON}
	bad := func(msg string) (query, bool) {
		writeError(w, r, msg, "BAD_REQUEST", http.StatusBadRequest)
		return query{}, false
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return bad("invalid business id")
	}
	q.businessID = id

	v := r.URL.Query()
	if s := v.Get("year"); s != "" {
		if q.year, err = strconv.Atoi(s); err != nil {
			return bad("invalid year " + strconv.Quote(s))
		}
		q.yearGiven = true
	}
	if s := v.Get("month"); s != "" {
		if q.month, err = strconv.Atoi(s); err != nil {
			return bad("invalid month " + strconv.Quote(s))
		}
	}
	if s := v.Get("as_of"); s != "" {
		if q.asOf, err = time.Parse(time.DateOnly, s); err != nil {
			return bad("invalid as_of " + strconv.Quote(s) + ", want YYYY-MM-DD")
		}
		q.asOfGiven = true
	}
	switch f := export.Format(v.Get("format")); f {
	case "", formatJSON:
	case export.FormatCSV, export.FormatXLSX:
		q.format = f
	default:
		return bad("unknown format " + strconv.Quote(string(f)))
	}
	return q, true
}

// respond writes report as JSON or renders it as a table in the requested
// format.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, report any, format export.Format, filename string) {
	if format == formatJSON {
		writeJSON(w, report)
		return
	}
	t, err := export.Render(report)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, t, format); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.%s", filename, format))
	_, _ = w.Write(buf.Bytes())
}
