package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/textguard/textguard/internal/auth"
	"github.com/textguard/textguard/internal/engine"
	"github.com/textguard/textguard/internal/storage"
)

// maxDocumentBytes bounds a single submission; anything larger should go
// through batch tooling, not the synchronous endpoint.
const maxDocumentBytes = 1 << 20

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type analyzeRequest struct {
	Text                 string `json:"text"`
	Title                string `json:"title"`
	ExcludeCitations     bool   `json:"exclude_citations"`
	ExcludeCommonPhrases bool   `json:"exclude_common_phrases"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBytes)

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	result, err := s.engine.Analyze(r.Context(), req.Text, engine.Options{
		ExcludeCitations:     req.ExcludeCitations,
		ExcludeCommonPhrases: req.ExcludeCommonPhrases,
	}, nil)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	if s.analyses != nil {
		userID, err := uuid.Parse(claims.UserID)
		if err == nil {
			stored := &storage.Analysis{
				UserID:       userID,
				Title:        req.Title,
				WordCount:    result.WordCount,
				OverallScore: result.OverallScore,
				MaxMatch:     result.MaxMatch,
				Result:       result,
			}
			if err := s.analyses.Create(r.Context(), stored); err != nil {
				respondError(w, http.StatusInternalServerError, "failed to persist analysis")
				return
			}
			result.ID = stored.ID.String()

			if s.fingerprints != nil && result.Style != nil {
				fp := &storage.Fingerprint{
					AnalysisID: stored.ID,
					UserID:     userID,
					Features:   storage.FeatureVector(result.Style.Document),
				}
				if err := s.fingerprints.Create(r.Context(), fp); err != nil {
					respondError(w, http.StatusInternalServerError, "failed to persist fingerprint")
					return
				}
			}
		}
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, ok := s.ownedAnalysis(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.GetUserFromContext(r.Context())
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if s.analyses == nil {
		respondError(w, http.StatusNotImplemented, "persistence not configured")
		return
	}

	analyses, err := s.analyses.ListByUser(r.Context(), userID, 0)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}
	if analyses == nil {
		analyses = []*storage.Analysis{}
	}

	respondJSON(w, http.StatusOK, analyses)
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, ok := s.ownedAnalysis(w, r)
	if !ok {
		return
	}

	if s.fingerprints != nil {
		if err := s.fingerprints.DeleteByAnalysisID(r.Context(), analysis.ID); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to delete fingerprint")
			return
		}
	}

	if err := s.analyses.Delete(r.Context(), analysis.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete analysis")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleSimilarStyle(w http.ResponseWriter, r *http.Request) {
	analysis, ok := s.ownedAnalysis(w, r)
	if !ok {
		return
	}

	if s.fingerprints == nil {
		respondError(w, http.StatusNotImplemented, "persistence not configured")
		return
	}

	fp, err := s.fingerprints.GetByAnalysisID(r.Context(), analysis.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load fingerprint")
		return
	}
	if fp == nil {
		respondError(w, http.StatusNotFound, "fingerprint not found")
		return
	}

	matches, err := s.fingerprints.FindSimilarStyle(r.Context(), fp.Features, 10)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "style search failed")
		return
	}

	type styleMatch struct {
		AnalysisID string  `json:"analysis_id"`
		Distance   float64 `json:"distance"`
	}
	out := make([]styleMatch, 0, len(matches))
	for _, m := range matches {
		if m.Fingerprint.AnalysisID == analysis.ID {
			continue
		}
		out = append(out, styleMatch{
			AnalysisID: m.Fingerprint.AnalysisID.String(),
			Distance:   m.Distance,
		})
	}

	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCommentary(w http.ResponseWriter, r *http.Request) {
	analysis, ok := s.ownedAnalysis(w, r)
	if !ok {
		return
	}

	if s.advisor == nil {
		respondError(w, http.StatusNotImplemented, "advisor not configured")
		return
	}
	if analysis.Result == nil {
		respondError(w, http.StatusNotFound, "analysis result not found")
		return
	}

	commentary, err := s.advisor.Review(r.Context(), analysis.Result)
	if err != nil {
		respondError(w, http.StatusBadGateway, "commentary unavailable")
		return
	}

	respondJSON(w, http.StatusOK, commentary)
}

// ownedAnalysis loads the analysis from the URL and enforces ownership.
func (s *Server) ownedAnalysis(w http.ResponseWriter, r *http.Request) (*storage.Analysis, bool) {
	claims, _ := auth.GetUserFromContext(r.Context())
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	if s.analyses == nil {
		respondError(w, http.StatusNotImplemented, "persistence not configured")
		return nil, false
	}

	analysisID, err := uuid.Parse(chi.URLParam(r, "analysisID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid analysis id")
		return nil, false
	}

	analysis, err := s.analyses.GetByID(r.Context(), analysisID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load analysis")
		return nil, false
	}
	if analysis == nil || analysis.UserID != userID {
		respondError(w, http.StatusNotFound, "analysis not found")
		return nil, false
	}

	return analysis, true
}
