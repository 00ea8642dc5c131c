package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/solleo1989/framefinder/internal/frame"
	"github.com/solleo1989/framefinder/internal/pidiv"
	"github.com/solleo1989/framefinder/internal/rng"
	"github.com/solleo1989/framefinder/internal/scan"
	"github.com/solleo1989/framefinder/internal/store"
)

// handleFind runs a single-origin frame search and returns every candidate.
func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	var req FindRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "Invalid JSON format", map[string]any{
			"error": err.Error(),
		})
		return
	}

	method, err := pidiv.ParseMethod(req.Method)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeMethodUnknown, err.Error(), nil)
		return
	}
	version, err := pidiv.ParseVersion(req.Version)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, err.Error(), nil)
		return
	}

	p := pidiv.Result{Type: method, OriginSeed: req.OriginSeed, RNG: rng.Standard}
	e := pidiv.Entity{PID: req.PID, Version: version, GenderRatio: req.GenderRatio}

	frames := []FoundFrame{}
	for f := range frame.Find(p, e) {
		frames = append(frames, FoundFrame{Seed: f.Seed, ESV: f.ESV, Lead: f.Lead.String()})
	}

	s.logger.Printf("find_completed method=%s version=%s origin_seed=%08X frames=%d",
		req.Method, req.Version, req.OriginSeed, len(frames))

	s.writeJSON(w, http.StatusOK, FindResponse{
		Frames:        frames,
		Count:         len(frames),
		Nature:        e.Nature(),
		EngineVersion: EngineVersion,
		Echo:          req,
	})
}

// handleScan runs a range scan and persists the outcome when a store is
// attached.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scan.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "Invalid JSON format", map[string]any{
			"error": err.Error(),
		})
		return
	}

	if req.TimeoutMs == 0 {
		req.TimeoutMs = 60000
	}

	s.logger.Printf("scan_request method=%s version=%s pid=%08X seed_range=%08X-%08X limit=%d",
		req.Method, req.Version, req.PID, req.SeedStart, req.SeedEnd, req.Limit)

	result, err := s.scanner.Scan(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		errType := ErrTypeInternal
		switch {
		case errors.Is(err, scan.ErrUnknownMethod), errors.Is(err, scan.ErrUnknownVersion),
			errors.Is(err, scan.ErrInvalidRange), errors.Is(err, scan.ErrInvalidLead):
			status = http.StatusBadRequest
			errType = ErrTypeValidation
		}
		s.writeError(w, r, status, errType, err.Error(), nil)
		return
	}

	searchID := ""
	if s.db != nil {
		searchID, err = s.persistScan(req, result)
		if err != nil {
			// Persistence failure must not hide a completed scan.
			s.logger.Printf("scan_persist_failed error=%v", err)
		}
	}

	s.logger.Printf("scan_completed method=%s hits=%d evaluated=%d timed_out=%t search_id=%s",
		req.Method, result.Summary.HitsFound, result.Summary.TotalEvaluated,
		result.Summary.TimedOut, searchID)

	s.writeJSON(w, http.StatusOK, struct {
		*scan.ScanResult
		SearchID string `json:"search_id,omitempty"`
	}{result, searchID})
}

func (s *Server) persistScan(req scan.ScanRequest, result *scan.ScanResult) (string, error) {
	search := &store.Search{
		Method:         req.Method,
		Version:        req.Version,
		PID:            req.PID,
		GenderRatio:    req.GenderRatio,
		SeedStart:      req.SeedStart,
		SeedEnd:        req.SeedEnd,
		LeadFilter:     strings.Join(req.Leads, ","),
		Script:         req.Script,
		HitCount:       result.Summary.HitsFound,
		TotalEvaluated: result.Summary.TotalEvaluated,
		HitRate:        result.Summary.HitRate,
		TimedOut:       result.Summary.TimedOut,
		EngineVersion:  result.EngineVersion,
	}
	if err := s.db.SaveSearch(search); err != nil {
		return "", err
	}

	rows := make([]store.FrameRow, len(result.Hits))
	for i, h := range result.Hits {
		rows[i] = store.FrameRow{
			OriginSeed: h.OriginSeed,
			FrameSeed:  h.FrameSeed,
			ESV:        h.ESV,
			Lead:       h.Lead,
		}
	}
	if err := s.db.SaveFrames(search.ID, rows); err != nil {
		return search.ID, err
	}
	return search.ID, nil
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, GetVersionInfo())
}

// handleListMethods reports every supported derivation method.
func (s *Server) handleListMethods(w http.ResponseWriter, r *http.Request) {
	methods := []pidiv.Method{
		pidiv.Method1, pidiv.Method2, pidiv.Method4, pidiv.MethodH,
		pidiv.MethodJ, pidiv.MethodK, pidiv.MethodCuteCharm,
		pidiv.MethodBACD, pidiv.MethodBACDReversed,
	}
	infos := make([]MethodInfo, len(methods))
	for i, m := range methods {
		infos[i] = MethodInfo{
			Name:      m.String(),
			EggOrigin: m.EggOrigin(),
			CuteCharm: m.IsCuteCharm(),
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"methods": infos})
}

func (s *Server) handleListSearches(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, ErrTypeInternal, "no store configured", nil)
		return
	}

	query := store.SearchQuery{
		Method:  r.URL.Query().Get("method"),
		Page:    queryInt(r, "page", 1),
		PerPage: queryInt(r, "per_page", 50),
	}
	list, err := s.db.ListSearches(query)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, err.Error(), nil)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetSearch(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, ErrTypeInternal, "no store configured", nil)
		return
	}

	id := chi.URLParam(r, "id")
	search, err := s.db.GetSearch(id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, ErrTypeNotFound, "search not found", map[string]any{"id": id})
		return
	}
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, err.Error(), nil)
		return
	}
	s.writeJSON(w, http.StatusOK, search)
}

func (s *Server) handleSearchFrames(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, ErrTypeInternal, "no store configured", nil)
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := s.db.GetSearch(id); errors.Is(err, store.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, ErrTypeNotFound, "search not found", map[string]any{"id": id})
		return
	} else if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, err.Error(), nil)
		return
	}

	page, err := s.db.GetFrames(id, queryInt(r, "page", 1), queryInt(r, "per_page", 100))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, err.Error(), nil)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
