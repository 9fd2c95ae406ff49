package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atlas-digital/agency-engine/internal/admin"
	"github.com/atlas-digital/agency-engine/internal/models"
	"github.com/atlas-digital/agency-engine/internal/storage"
)

// Session handlers

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if !s.auth.VerifyPassword(req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	s.auth.SetSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "authenticated"})
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.ClearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (s *Server) handleAdminSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"authenticated": IsAdmin(r.Context())})
}

// Helpers

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func respondAdminError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, admin.ErrValidation):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, admin.ErrHasChildren):
		respondError(w, http.StatusConflict, "has_children", err.Error())
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "operation failed")
	}
}

// Project types

func (s *Server) handleListProjectTypes(w http.ResponseWriter, r *http.Request) {
	items, err := s.repo.ListProjectTypes(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list project types")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateProjectType(w http.ResponseWriter, r *http.Request) {
	var pt models.ProjectType
	if err := json.NewDecoder(r.Body).Decode(&pt); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	created, err := s.admin.CreateProjectType(r.Context(), pt)
	if err != nil {
		respondAdminError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateProjectType(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	var pt models.ProjectType
	if err := json.NewDecoder(r.Body).Decode(&pt); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	pt.ID = id

	if err := s.admin.UpdateProjectType(r.Context(), pt); err != nil {
		respondAdminError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pt)
}

func (s *Server) handleDeleteProjectType(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	if err := s.admin.DeleteProjectType(r.Context(), id); err != nil {
		respondAdminError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Design levels

func (s *Server) handleListDesignLevels(w http.ResponseWriter, r *http.Request) {
	items, err := s.repo.ListDesignLevels(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list design levels")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateDesignLevel(w http.ResponseWriter, r *http.Request) {
	var dl models.DesignLevel
	if err := json.NewDecoder(r.Body).Decode(&dl); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	created, err := s.admin.CreateDesignLevel(r.Context(), dl)
	if err != nil {
		respondAdminError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateDesignLevel(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	var dl models.DesignLevel
	if err := json.NewDecoder(r.Body).Decode(&dl); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	dl.ID = id

	if err := s.admin.UpdateDesignLevel(r.Context(), dl); err != nil {
		respondAdminError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dl)
}

func (s *Server) handleDeleteDesignLevel(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	if err := s.admin.DeleteDesignLevel(r.Context(), id); err != nil {
		respondAdminError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Feature categories

func (s *Server) handleListFeatureCategories(w http.ResponseWriter, r *http.Request) {
	items, err := s.repo.ListFeatureCategories(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list feature categories")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateFeatureCategory(w http.ResponseWriter, r *http.Request) {
	var fc models.FeatureCategory
	if err := json.NewDecoder(r.Body).Decode(&fc); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	created, err := s.admin.CreateFeatureCategory(r.Context(), fc)
	if err != nil {
		respondAdminError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateFeatureCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	var fc models.FeatureCategory
	if err := json.NewDecoder(r.Body).Decode(&fc); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	fc.ID = id

	if err := s.admin.UpdateFeatureCategory(r.Context(), fc); err != nil {
		respondAdminError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fc)
}

func (s *Server) handleDeleteFeatureCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	if err := s.admin.DeleteFeatureCategory(r.Context(), id); err != nil {
		respondAdminError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Features

func (s *Server) handleListFeatures(w http.ResponseWriter, r *http.Request) {
	items, err := s.repo.ListFeatures(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list features")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateFeature(w http.ResponseWriter, r *http.Request) {
	var f models.Feature
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	created, err := s.admin.CreateFeature(r.Context(), f)
	if err != nil {
		respondAdminError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateFeature(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	var f models.Feature
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	f.ID = id

	if err := s.admin.UpdateFeature(r.Context(), f); err != nil {
		respondAdminError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, f)
}

func (s *Server) handleDeleteFeature(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	if err := s.admin.DeleteFeature(r.Context(), id); err != nil {
		respondAdminError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Scope modifiers

func (s *Server) handleListScopeModifiers(w http.ResponseWriter, r *http.Request) {
	items, err := s.repo.ListScopeModifiers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list scope modifiers")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateScopeModifier(w http.ResponseWriter, r *http.Request) {
	var sm models.ScopeModifier
	if err := json.NewDecoder(r.Body).Decode(&sm); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	created, err := s.admin.CreateScopeModifier(r.Context(), sm)
	if err != nil {
		respondAdminError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateScopeModifier(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	var sm models.ScopeModifier
	if err := json.NewDecoder(r.Body).Decode(&sm); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	sm.ID = id

	if err := s.admin.UpdateScopeModifier(r.Context(), sm); err != nil {
		respondAdminError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sm)
}

func (s *Server) handleDeleteScopeModifier(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	if err := s.admin.DeleteScopeModifier(r.Context(), id); err != nil {
		respondAdminError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Scope modifier options

func (s *Server) handleListScopeModifierOptions(w http.ResponseWriter, r *http.Request) {
	items, err := s.repo.ListScopeModifierOptions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list scope modifier options")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateScopeModifierOption(w http.ResponseWriter, r *http.Request) {
	var opt models.ScopeModifierOption
	if err := json.NewDecoder(r.Body).Decode(&opt); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	created, err := s.admin.CreateScopeModifierOption(r.Context(), opt)
	if err != nil {
		respondAdminError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateScopeModifierOption(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	var opt models.ScopeModifierOption
	if err := json.NewDecoder(r.Body).Decode(&opt); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	opt.ID = id

	if err := s.admin.UpdateScopeModifierOption(r.Context(), opt); err != nil {
		respondAdminError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, opt)
}

func (s *Server) handleDeleteScopeModifierOption(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}

	if err := s.admin.DeleteScopeModifierOption(r.Context(), id); err != nil {
		respondAdminError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Submissions

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	filters := models.SubmissionFilters{
		Source: models.SubmissionSource(r.URL.Query().Get("source")),
		Limit:  50,
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 && limit <= 500 {
			filters.Limit = limit
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset >= 0 {
			filters.Offset = offset
		}
	}

	items, err := s.repo.ListSubmissions(r.Context(), filters)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list submissions")
		return
	}
	respondJSON(w, http.StatusOK, items)
}
