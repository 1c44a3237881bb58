package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/cashbook/internal/engine"
	"github.com/cleared-dev/cashbook/internal/ledgertest"
	"github.com/cleared-dev/cashbook/internal/model"
	"github.com/cleared-dev/cashbook/internal/reports"
	"github.com/cleared-dev/cashbook/internal/store"
	"github.com/cleared-dev/cashbook/internal/validation"
)

var (
	date = ledgertest.Date
	cat  = ledgertest.Cat
	now  = func() time.Time { return time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC) }
)

func newServer(t *testing.T) (http.Handler, *bytes.Buffer) {
	t.Helper()
	b := ledgertest.New(t)
	bank := b.Bank("Checking", "1000.00")
	savings := b.Bank("Savings", "0.00")
	b.In(bank, date(2026, 1, 10), "100.00", cat("head_1", ""))
	b.Out(bank, date(2026, 1, 20), "50.00", cat("head_12", ""))
	b.Out(bank, date(2026, 3, 1), "2000.00", ledgertest.Special(model.SpecialTransferOut, ""))
	b.In(savings, date(2026, 3, 1), "1500.00", ledgertest.Special(model.SpecialTransferIn, ""))
	b.Add(ledgertest.Txn{Account: bank, Date: date(2026, 4, 1), Dir: model.DirectionOut, Gross: "10.00"})

	logs := &bytes.Buffer{}
	log := zerolog.New(logs)
	svc := engine.NewService(store.NewMemory(b.Ledger()), log, engine.DefaultOptions())
	return NewRouter(svc, log, now), logs
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProfitAndLoss_JSON(t *testing.T) {
	h, logs := newServer(t)

	rec := get(t, h, "/businesses/1/reports/pl?year=2026")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var r reports.PLReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, 2026, r.Year)
	assert.Equal(t, "50.00", r.Month(1).NetProfit.StringFixed(2))
	assert.Equal(t, "100.00", r.Month(1).Income.Amount("head_1").StringFixed(2))
	assert.Equal(t, "50.00", r.YTD.NetProfit.StringFixed(2))

	assert.Contains(t, logs.String(), `"path":"/businesses/1/reports/pl"`)
	assert.Contains(t, logs.String(), `"status":200`)
}

func TestDefaultsToCurrentYear(t *testing.T) {
	h, _ := newServer(t)

	rec := get(t, h, "/businesses/1/reports/tax")
	require.Equal(t, http.StatusOK, rec.Code)

	var r reports.TaxReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, 2026, r.Year)
}

func TestBalanceSheet_CSV(t *testing.T) {
	h, _ := newServer(t)

	rec := get(t, h, "/businesses/1/reports/balance-sheet?year=2026&format=csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=balance_sheet_2026.csv", rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Balance Sheet"), rec.Body.String())
}

func TestProfitAndLoss_XLSX(t *testing.T) {
	h, _ := newServer(t)

	rec := get(t, h, "/businesses/1/reports/pl?year=2026&format=xlsx")
	require.Equal(t, http.StatusOK, rec.Code)

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	title, err := f.GetCellValue("P&L", "A1")
	require.NoError(t, err)
	assert.Equal(t, "P&L Report", title)
}

func TestTransfers(t *testing.T) {
	h, _ := newServer(t)

	rec := get(t, h, "/businesses/1/validation/transfers?year=2026&month=3")
	require.Equal(t, http.StatusOK, rec.Code)

	var r validation.TransferReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.False(t, r.AllBalanced)
	assert.Equal(t, []int{3}, r.UnbalancedMonths)
	require.Len(t, r.Months, 1)
	assert.Equal(t, "500.00", r.Months[0].Difference.StringFixed(2))
}

func TestTransactions_AllYears(t *testing.T) {
	h, _ := newServer(t)

	rec := get(t, h, "/businesses/1/validation/transactions?as_of=2026-06-30")
	require.Equal(t, http.StatusOK, rec.Code)

	var r validation.TransactionReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, validation.Scope{}, r.Scope)
	assert.Equal(t, 5, r.Checked)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, validation.KindMissingAllocation, r.Errors[0].Kind)
}

func TestFullReport(t *testing.T) {
	h, _ := newServer(t)

	rec := get(t, h, "/businesses/1/validation/full-report?year=2026")
	require.Equal(t, http.StatusOK, rec.Code)

	var s validation.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, validation.StatusInvalid, s.Status)
	assert.True(t, s.HasErrors)

	rec = get(t, h, "/businesses/1/validation/full-report?year=2026&format=csv")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=validation_2026.csv", rec.Header().Get("Content-Disposition"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "Validation Summary,Year: 2026,Status: invalid"), body)
	assert.Contains(t, body, "missing_allocation")

	rec = get(t, h, "/businesses/1/validation/full-report?year=2026&format=xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	title, err := f.GetCellValue("Validation", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Validation Summary", title)
}

func TestBalances(t *testing.T) {
	h, _ := newServer(t)

	rec := get(t, h, "/businesses/1/balances")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []reports.AccountBalance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 2)
	assert.Equal(t, "-960.00", all[0].Current.StringFixed(2))

	rec = get(t, h, "/businesses/1/balances?as_of=2026-01-31")
	require.Equal(t, http.StatusOK, rec.Code)
	var jan []reports.AccountBalance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jan))
	assert.Equal(t, "1050.00", jan[0].Current.StringFixed(2))
}

func TestErrors(t *testing.T) {
	h, _ := newServer(t)

	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"unknown business", "/businesses/42/reports/pl?year=2026", http.StatusNotFound, "NOT_FOUND"},
		{"bad year", "/businesses/1/reports/pl?year=abc", http.StatusBadRequest, "BAD_REQUEST"},
		{"year out of range", "/businesses/1/reports/pl?year=0", http.StatusBadRequest, "BAD_REQUEST"},
		{"bad month", "/businesses/1/validation/transfers?month=13", http.StatusBadRequest, "BAD_REQUEST"},
		{"bad as_of", "/businesses/1/balances?as_of=30.06.2026", http.StatusBadRequest, "BAD_REQUEST"},
		{"bad format", "/businesses/1/reports/tax?format=pdf", http.StatusBadRequest, "BAD_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.target)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, rec.Header().Get("X-Request-ID"), resp.RequestID)
		})
	}
}

func TestRequestID_KeepsValidCallerID(t *testing.T) {
	h, _ := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	assert.JSONEq(t, `{"status":"ok","version":"dev"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "not valid!")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "not valid!", rec.Header().Get("X-Request-ID"))
}
