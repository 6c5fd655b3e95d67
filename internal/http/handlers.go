package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"notebk/internal/backup"
	"notebk/internal/core"
	"notebk/internal/log"
	"notebk/internal/transfer"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports whether the document can be served and exported, along
// with the security counters.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"document": "ok", "exporter": "ok"}
	status, code := "ready", http.StatusOK
	if s.nb == nil {
		checks["document"] = "failed: notebook not open"
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	if s.exporter == nil {
		checks["exporter"] = "disabled"
	}
	writeJSON(w, code, map[string]any{"status": status, "checks": checks, "metrics": s.metrics.snapshot()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.nb.State())
}

type summaryResponse struct {
	Year         string           `json:"year"`
	Expenses     core.YearSummary `json:"expenses"`
	SavingsTotal decimal.Decimal  `json:"savingsTotal"`
	HealthDone   int              `json:"healthDone"`
	HealthTotal  int              `json:"healthTotal"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	year, err := pathKey(r, "year", core.CanonicalYear)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	state := s.nb.State()
	done, total := core.HealthProgress(state.Health[year])
	writeJSON(w, http.StatusOK, summaryResponse{
		Year:         year,
		Expenses:     s.nb.AnnualSummary(year),
		SavingsTotal: core.SavingsTotal(state.Savings, year),
		HealthDone:   done,
		HealthTotal:  total,
	})
}

// apply runs an edit and writes the resulting document, or a 500 when the
// write failed and nothing changed.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, edit core.Edit, status int, body func(core.AppState) any) {
	state, err := s.nb.Apply(r.Context(), edit)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Edit not saved",
			log.FieldEdit, edit.Name(), log.FieldError, err)
		writeError(w, http.StatusInternalServerError, backup.MsgWriteFailed)
		return
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, body(state))
}

type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSetNote(w http.ResponseWriter, r *http.Request) {
	day, err := pathKey(r, "day", core.CanonicalDay)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.apply(w, r, core.SetNoteEdit{Day: day, Text: sanitizeInput(req.Text)}, http.StatusOK,
		func(st core.AppState) any { return map[string]string{"day": day, "text": st.Notes[day]} })
}

func (s *Server) handleSetMonthlyNote(w http.ResponseWriter, r *http.Request) {
	month, err := pathKey(r, "month", core.CanonicalMonth)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.apply(w, r, core.SetMonthlyNoteEdit{Month: month, Text: sanitizeInput(req.Text)}, http.StatusOK,
		func(st core.AppState) any { return map[string]string{"month": month, "text": st.MonthlyNotes[month]} })
}

func (s *Server) handleReplaceExpenses(w http.ResponseWriter, r *http.Request) {
	month, err := pathKey(r, "month", core.CanonicalMonth)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		Expenses []core.Expense `json:"expenses"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ids := make([]string, len(req.Expenses))
	for i := range req.Expenses {
		e := &req.Expenses[i]
		e.ID = strings.TrimSpace(e.ID)
		e.Date = sanitizeInput(e.Date)
		e.Concept = sanitizeInput(e.Concept)
		ids[i] = e.ID
	}
	if err := uniqueIDs(ids); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.Expenses == nil {
		req.Expenses = []core.Expense{}
	}
	s.apply(w, r, core.ReplaceExpensesEdit{Month: month, Expenses: req.Expenses}, http.StatusOK,
		func(st core.AppState) any {
			return map[string]any{"month": month, "expenses": st.Expenses[month], "totals": core.MonthTotals(st.Expenses[month])}
		})
}

func (s *Server) handleSetSaving(w http.ResponseWriter, r *http.Request) {
	year, err := pathKey(r, "year", core.CanonicalYear)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	month, err := core.ParseMonthName(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		Amount core.Amount `json:"amount"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.apply(w, r, core.SetSavingEdit{Year: year, Month: month, Amount: req.Amount}, http.StatusOK,
		func(st core.AppState) any {
			return map[string]any{"year": year, "savings": st.Savings[year], "total": core.SavingsTotal(st.Savings, year)}
		})
}

func (s *Server) handleReplaceHealth(w http.ResponseWriter, r *http.Request) {
	year, err := pathKey(r, "year", core.CanonicalYear)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		Items []core.HealthItem `json:"items"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ids := make([]string, len(req.Items))
	for i := range req.Items {
		req.Items[i].ID = strings.TrimSpace(req.Items[i].ID)
		req.Items[i].Title = sanitizeInput(req.Items[i].Title)
		ids[i] = req.Items[i].ID
	}
	if err := uniqueIDs(ids); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.Items == nil {
		req.Items = []core.HealthItem{}
	}
	s.apply(w, r, core.ReplaceHealthEdit{Year: year, Items: req.Items}, http.StatusOK,
		func(st core.AppState) any {
			done, total := core.HealthProgress(st.Health[year])
			return map[string]any{"year": year, "items": st.Health[year], "done": done, "total": total}
		})
}

type tableRequest struct {
	Title     string `json:"title"`
	Col1Title string `json:"col1Title"`
	Col2Title string `json:"col2Title"`
	Color     string `json:"color"`
	Icon      string `json:"icon"`
}

func (s *Server) handleAddTable(w http.ResponseWriter, r *http.Request) {
	year, err := pathKey(r, "year", core.CanonicalYear)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req tableRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	table, err := core.NewCustomTable(s.nb.NewID(), sanitizeInput(req.Title),
		sanitizeInput(req.Col1Title), sanitizeInput(req.Col2Title), req.Color, req.Icon)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.apply(w, r, core.AddCustomTableEdit{Year: year, Table: table}, http.StatusCreated,
		func(core.AppState) any { return table })
}

func (s *Server) handleReplaceRows(w http.ResponseWriter, r *http.Request) {
	year, err := pathKey(r, "year", core.CanonicalYear)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	if _, ok := s.nb.State().FindTable(year, id); !ok {
		writeError(w, http.StatusNotFound, core.ErrTableNotFound.Error())
		return
	}
	var req struct {
		Rows []core.Row `json:"rows"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ids := make([]string, len(req.Rows))
	for i := range req.Rows {
		row := &req.Rows[i]
		row.ID = strings.TrimSpace(row.ID)
		row.Val1 = sanitizeInput(row.Val1)
		row.Val2 = sanitizeInput(row.Val2)
		ids[i] = row.ID
	}
	if err := uniqueIDs(ids); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.Rows == nil {
		req.Rows = []core.Row{}
	}
	s.apply(w, r, core.ReplaceTableRowsEdit{Year: year, TableID: id, Rows: req.Rows}, http.StatusOK,
		func(st core.AppState) any {
			t, _ := st.FindTable(year, id)
			return t
		})
}

func (s *Server) handleRemoveTable(w http.ResponseWriter, r *http.Request) {
	year, err := pathKey(r, "year", core.CanonicalYear)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	if _, ok := s.nb.State().FindTable(year, id); !ok {
		writeError(w, http.StatusNotFound, core.ErrTableNotFound.Error())
		return
	}
	s.apply(w, r, core.RemoveCustomTableEdit{Year: year, TableID: id}, http.StatusNoContent, nil)
}

// handleExport hands a backup to the configured exporter.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "export is not configured")
		return
	}
	res := s.nb.Export(r.Context(), s.exporter)
	if !res.Success {
		writeJSON(w, http.StatusBadGateway, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleDownloadBackup streams a backup file to the client.
func (s *Server) handleDownloadBackup(w http.ResponseWriter, r *http.Request) {
	payload, err := s.nb.ExportBackup(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Backup not serialized", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, transfer.MsgExportFailed)
		return
	}
	res := transfer.Browser{Downloader: transfer.ResponseDownloader{W: w}}.Export(r.Context(), payload)
	if !res.Success {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Backup download interrupted",
			log.FieldFilename, payload.Filename)
	}
}

// handleUploadBackup restores the document from an uploaded backup file.
// With ?dry_run=1 the file is only validated.
func (s *Server) handleUploadBackup(w http.ResponseWriter, r *http.Request) {
	dryRun := r.URL.Query().Get("dry_run") == "1"
	r.Body = http.MaxBytesReader(w, r.Body, transfer.MaxUploadBytes)

	res := s.nb.Restore(r.Context(), transfer.UploadPicker{Request: r}, dryRun)
	res.Data = nil
	if res.Success {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "dryRun": dryRun})
		return
	}
	writeJSON(w, importStatus(res.Kind), res)
}

func importStatus(kind backup.Kind) int {
	switch kind {
	case backup.KindRead:
		return http.StatusBadRequest
	case backup.KindParse, backup.KindInvalid:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
