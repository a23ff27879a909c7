package handler

import (
	"encoding/json"
	"net/http"

	"github.com/zippyboards/backend/internal/model"
	"github.com/zippyboards/backend/internal/service"
)

// hasJSONKey reports whether raw contains key.
func hasJSONKey(raw map[string]json.RawMessage, key string) bool {
	_, ok := raw[key]
	return ok
}

// ProjectHandler serves projects and their memberships.
type ProjectHandler struct {
	projectService    service.ProjectService
	membershipService service.MembershipService
}

func NewProjectHandler(projectService service.ProjectService, membershipService service.MembershipService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, membershipService: membershipService}
}

type projectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// List handles GET /api/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.ListMine(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if projects == nil {
		projects = []*model.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// Create handles POST /api/projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var name, desc string
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		desc = *req.Description
	}
	p, err := h.projectService.Create(r.Context(), name, desc)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Get handles GET /api/projects/{id} and returns the project page.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	page, err := h.projectService.Page(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Update handles PUT /api/projects/{id}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.projectService.Update(r.Context(), r.PathValue("id"), req.Name, req.Description)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /api/projects/{id}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.projectService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Members handles GET /api/projects/{id}/members.
func (h *ProjectHandler) Members(w http.ResponseWriter, r *http.Request) {
	members, err := h.membershipService.ListMembers(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if members == nil {
		members = []*model.MemberView{}
	}
	writeJSON(w, http.StatusOK, members)
}

type addMemberRequest struct {
	Email string `json:"email"`
}

// AddMember handles POST /api/projects/{id}/members.
func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeResult(w, h.membershipService.AddMember(r.Context(), r.PathValue("id"), req.Email))
}

// RemoveMember handles DELETE /api/projects/{id}/members/{userID}.
func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.membershipService.RemoveMember(r.Context(), r.PathValue("id"), r.PathValue("userID")))
}
