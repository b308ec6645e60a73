package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/jalad-shrimali/bureaux-filter/bureau"
	"github.com/jalad-shrimali/bureaux-filter/sheet"
	"github.com/jalad-shrimali/bureaux-filter/store"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

/* ──────────── upload ──────────── */

// POST /upload: multipart field "file" holding an .xlsx workbook.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
			jsonError(w, fmt.Sprintf("file too large (max %d MB)", s.maxUpload>>20), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "multipart form expected", http.StatusBadRequest)
		return
	}

	file, hdr, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "field 'file' is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, err := sheet.ReadRows(file)
	if err != nil {
		log.Printf("upload %s: %v", hdr.Filename, err)
		jsonError(w, "file is not a readable .xlsx workbook", http.StatusUnprocessableEntity)
		return
	}

	ds := bureau.NewDataset(hdr.Filename, rows)
	if s.snaps != nil {
		if err := s.snaps.Save(r.Context(), ds); err != nil {
			log.Printf("snapshot %s: %v", ds.ID, err)
			jsonError(w, "could not store snapshot", http.StatusInternalServerError)
			return
		}
	}

	log.Printf("loaded %s: %d rows, %d records (dataset %s)", hdr.Filename, len(rows), ds.Len(), ds.ID)
	writeJSON(w, http.StatusOK, s.replace(ds))
}

/* ──────────── view ──────────── */

// queryState builds a one-off state from ?city=&category=&mode=. ok is false
// when none of them is present.
func (s *Server) queryState(r *http.Request) (st bureau.FilterState, ok bool, err error) {
	q := r.URL.Query()
	if !q.Has("city") && !q.Has("category") && !q.Has("mode") {
		return st, false, nil
	}
	st = s.freshState()
	st.Cities = bureau.NewSelection(q["city"]...)
	st.Categories = bureau.NewSelection(q["category"]...)
	if q.Has("mode") {
		if st.Mode, err = bureau.ParseMatchMode(q.Get("mode")); err != nil {
			return st, true, err
		}
	}
	return st, true, nil
}

// GET /records: current view, or an ad-hoc one when filters are in the query.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	st, adhoc, err := s.queryState(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	if !adhoc {
		st = s.state.Clone()
	}
	resp := s.viewLocked(st)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, resp)
}

// GET /export.xlsx: the visible table as a workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	st, adhoc, err := s.queryState(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	if s.data == nil {
		s.mu.RUnlock()
		jsonError(w, "no file loaded", http.StatusNotFound)
		return
	}
	if !adhoc {
		st = s.state.Clone()
	}
	visible := bureau.Apply(s.data.Records, st)
	s.mu.RUnlock()

	var buf bytes.Buffer
	if err := sheet.WriteReport(&buf, visible); err != nil {
		log.Printf("export: %v", err)
		jsonError(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", `attachment; filename="bureaux_filtres.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}

/* ──────────── selection mutations ──────────── */

type selector func(st *bureau.FilterState) *bureau.Selection

func citySel(st *bureau.FilterState) *bureau.Selection     { return &st.Cities }
func categorySel(st *bureau.FilterState) *bureau.Selection { return &st.Categories }

// mutate applies fn to the session state and answers with the new view.
func (s *Server) mutate(w http.ResponseWriter, fn func(st *bureau.FilterState)) {
	s.mu.Lock()
	fn(&s.state)
	resp := s.viewLocked(s.state)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// POST /filters/{cities|categories}/toggle: body {"value": "..."}.
func (s *Server) handleToggle(sel selector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Value string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Value) == "" {
			jsonError(w, "field 'value' is required", http.StatusBadRequest)
			return
		}
		s.mutate(w, func(st *bureau.FilterState) { sel(st).Toggle(req.Value) })
	}
}

// DELETE /filters/{cities|categories}/{value}
func (s *Server) handleRemove(sel selector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := r.PathValue("value")
		s.mutate(w, func(st *bureau.FilterState) { sel(st).Remove(v) })
	}
}

// PUT /filters/mode: body {"mode": "exact" | "avec-autres"}.
func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "field 'mode' is required", http.StatusBadRequest)
		return
	}
	mode, err := bureau.ParseMatchMode(req.Mode)
	if err != nil {
		jsonError(w, fmt.Sprintf("%v: %q", err, req.Mode), http.StatusBadRequest)
		return
	}
	s.mutate(w, func(st *bureau.FilterState) { st.Mode = mode })
}

// DELETE /filters: back to no selection and the default mode.
func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	fresh := s.freshState()
	s.mutate(w, func(st *bureau.FilterState) { *st = fresh })
}

/* ──────────── snapshots ──────────── */

// GET /snapshots: stored uploads, newest first.
func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.snaps == nil {
		jsonError(w, "snapshots are disabled", http.StatusNotFound)
		return
	}
	list, err := s.snaps.Datasets(r.Context())
	if err != nil {
		log.Printf("list snapshots: %v", err)
		jsonError(w, "could not list snapshots", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// POST /snapshots/{id}/load: make a stored upload the current data set.
func (s *Server) handleLoadSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.snaps == nil {
		jsonError(w, "snapshots are disabled", http.StatusNotFound)
		return
	}
	ds, err := s.snaps.Load(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "snapshot not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("load snapshot: %v", err)
		jsonError(w, "could not load snapshot", http.StatusInternalServerError)
		return
	}
	log.Printf("restored snapshot %s (%s, %d records)", ds.ID, ds.FileName, ds.Len())
	writeJSON(w, http.StatusOK, s.replace(ds))
}
