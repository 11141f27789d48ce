package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ricevute/internal/core"
	"ricevute/internal/services"
)

// maxUploadBytes caps the multipart body of a receipt upload. Receipts
// arrive as phone photos; 20 MiB is generous.
const maxUploadBytes = 20 << 20

type ingestResponse struct {
	RawText     string `json:"raw_text"`
	LocalPath   string `json:"local_path"`
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	VendorLine  string `json:"vendor_line"`
	Synced      bool   `json:"synced"`
	SyncError   string `json:"sync_error,omitempty"`
}

// handleIngestReceipt accepts a multipart upload with a "receipt" file part
// and an optional "date" field (YYYY-MM-DD), runs the ingestion pipeline
// and returns the interpreted result.
func (s *Server) handleIngestReceipt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, _, err := r.FormFile("receipt")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing receipt file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable receipt file")
		return
	}

	var date core.Date
	if v := strings.TrimSpace(r.FormValue("date")); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = core.Date{Time: parsed}
	}

	result, err := s.ingestion.Ingest(r.Context(), services.IngestRequest{Data: data, Date: date})
	resp := ingestResponse{
		RawText:     result.RawText,
		LocalPath:   result.LocalPath,
		Category:    result.Category,
		AmountCents: result.Amount.Cents,
		Amount:      result.Amount.String(),
		VendorLine:  result.VendorLine,
		Synced:      result.Synced,
		SyncError:   result.SyncError,
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Receipt ingestion failed", "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type expenseRequest struct {
	Date        string `json:"date"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

type expenseResponse struct {
	ID          int64  `json:"id"`
	Year        int    `json:"year"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateExpense(w, r)
	case http.MethodGet:
		s.handleListExpenses(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(req.Amount))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	expense := core.Expense{
		Year:        parsed.Year(),
		Date:        core.Date{Time: parsed},
		Category:    sanitizeInput(req.Category),
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: cents},
	}
	if err := expense.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.expenses.AddExpense(r.Context(), expense)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense insert failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record expense")
		return
	}

	writeJSON(w, http.StatusCreated, expenseResponse{
		ID:          id,
		Year:        expense.Year,
		Date:        expense.Date.Format("2006-01-02"),
		Category:    expense.Category,
		Description: expense.Description,
		AmountCents: expense.Amount.Cents,
		Amount:      expense.Amount.String(),
	})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}

	expenses, err := s.expenses.ListExpenses(r.Context(), year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense list failed", "error", err, "year", year)
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}

	resp := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		resp = append(resp, expenseResponse{
			Year:        e.Year,
			Date:        e.Date.Format("2006-01-02"),
			Category:    e.Category,
			Description: e.Description,
			AmountCents: e.Amount.Cents,
			Amount:      e.Amount.String(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type categorySummaryResponse struct {
	Category        string  `json:"category"`
	TotalCents      int64   `json:"total_cents"`
	Total           string  `json:"total"`
	LimitCents      int64   `json:"limit_cents"`
	Rate            float64 `json:"rate"`
	DeductibleCents int64   `json:"deductible_cents"`
	Deductible      string  `json:"deductible"`
}

type summaryResponse struct {
	Year       int                       `json:"year"`
	TotalCents int64                     `json:"total_cents"`
	Total      string                    `json:"total"`
	Categories []categorySummaryResponse `json:"categories"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	year, ok := parseYear(w, r)
	if !ok {
		return
	}

	summary, err := s.expenses.YearSummary(r.Context(), year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Year summary failed", "error", err, "year", year)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	resp := summaryResponse{
		Year:       summary.Year,
		TotalCents: summary.Total.Cents,
		Total:      summary.Total.String(),
		Categories: make([]categorySummaryResponse, 0, len(summary.Categories)),
	}
	for _, c := range summary.Categories {
		resp.Categories = append(resp.Categories, categorySummaryResponse{
			Category:        c.Category,
			TotalCents:      c.Total.Cents,
			Total:           c.Total.String(),
			LimitCents:      c.Limit.Cents,
			Rate:            c.Rate,
			DeductibleCents: c.Deductible.Cents,
			Deductible:      c.Deductible.String(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseYear pulls the mandatory year query parameter, defaulting to the
// current year when absent.
func parseYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	v := strings.TrimSpace(r.URL.Query().Get("year"))
	if v == "" {
		return time.Now().Year(), true
	}
	year, err := strconv.Atoi(v)
	if err != nil || year < 1970 || year > 9999 {
		writeError(w, http.StatusUnprocessableEntity, "invalid year")
		return 0, false
	}
	return year, true
}
