package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/zippyboards/backend/internal/board"
	"github.com/zippyboards/backend/internal/model"
	"github.com/zippyboards/backend/internal/service"
)

// parseDueDate accepts "YYYY-MM-DD" or RFC3339. Empty means no date.
func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("invalid due date %q", s)
}

// TaskHandler serves tasks and the board view.
type TaskHandler struct {
	taskService service.TaskService
}

func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// List handles GET /api/projects/{id}/tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.List(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Board handles GET /api/projects/{id}/board?filter=&sort=&dir=.
func (h *TaskHandler) Board(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := board.ParseFilter(q.Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), service.CodeValidationFailure)
		return
	}
	key, err := board.ParseSortKey(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), service.CodeValidationFailure)
		return
	}
	dir, err := board.ParseDirection(q.Get("dir"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), service.CodeValidationFailure)
		return
	}

	lanes, err := h.taskService.Board(r.Context(), r.PathValue("id"), filter, key, dir)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lanes)
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     string  `json:"due_date"`
	AssignedTo  *string `json:"assigned_to"`
}

// Create handles POST /api/projects/{id}/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := service.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Priority:    model.Priority(req.Priority),
		AssignedTo:  req.AssignedTo,
	}
	if req.Status != "" {
		lane, err := model.ParseLane(req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), service.CodeValidationFailure)
			return
		}
		in.Status = lane
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), service.CodeValidationFailure)
		return
	}
	in.DueDate = due

	t, err := h.taskService.Create(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// Update handles PATCH /api/tasks/{id}. Keys that are present with null
// clear due_date and assigned_to; absent keys are left unchanged.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if !decodeJSON(w, r, &raw) {
		return
	}
	patch, err := taskPatchFromJSON(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), service.CodeValidationFailure)
		return
	}
	t, err := h.taskService.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func taskPatchFromJSON(raw map[string]json.RawMessage) (model.TaskPatch, error) {
	var p model.TaskPatch
	decode := func(key string) (*string, error) {
		var s *string
		if err := json.Unmarshal(raw[key], &s); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return s, nil
	}

	if hasJSONKey(raw, "title") {
		v, err := decode("title")
		if err != nil {
			return p, err
		}
		p.Title = v
	}
	if hasJSONKey(raw, "description") {
		v, err := decode("description")
		if err != nil {
			return p, err
		}
		if v == nil {
			empty := ""
			v = &empty
		}
		p.Description = v
	}
	if hasJSONKey(raw, "status") {
		v, err := decode("status")
		if err != nil {
			return p, err
		}
		if v != nil {
			lane, err := model.ParseLane(*v)
			if err != nil {
				return p, err
			}
			p.Status = &lane
		}
	}
	if hasJSONKey(raw, "priority") {
		v, err := decode("priority")
		if err != nil {
			return p, err
		}
		if v != nil {
			prio := model.Priority(*v)
			p.Priority = &prio
		}
	}
	if hasJSONKey(raw, "due_date") {
		v, err := decode("due_date")
		if err != nil {
			return p, err
		}
		if v == nil || *v == "" {
			p.ClearDueDate = true
		} else {
			due, err := parseDueDate(*v)
			if err != nil {
				return p, err
			}
			p.DueDate = due
		}
	}
	if hasJSONKey(raw, "assigned_to") {
		v, err := decode("assigned_to")
		if err != nil {
			return p, err
		}
		if v == nil || *v == "" {
			p.ClearAssignee = true
		} else {
			p.AssignedTo = v
		}
	}
	return p, nil
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/tasks/{id}/status, the lane change sent by board moves.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	lane, err := model.ParseLane(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), service.CodeValidationFailure)
		return
	}
	t, err := h.taskService.UpdateStatus(r.Context(), r.PathValue("id"), lane)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.taskService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
