package httpapi

import (
	"net/http"

	"tracker/internal/api"
	"tracker/internal/domain"
)

// GET /entries?day=YYYY-MM-DD lists one day, today by default.
func (s *Server) listEntries(w http.ResponseWriter, r *http.Request, user *domain.User) {
	day, err := queryDate(r, "day")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var d domain.Date
	if day != nil {
		d = *day
	}
	listing, err := s.api.ListEntries(r.Context(), user.ID, d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request, user *domain.User) {
	var in api.EntryInput
	if err := decode(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	entry, err := s.api.CreateEntry(r.Context(), user.ID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request, user *domain.User) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	entry, err := s.api.GetEntry(r.Context(), user.ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request, user *domain.User) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in api.EntryInput
	if err := decode(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	entry, err := s.api.UpdateEntry(r.Context(), user.ID, id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request, user *domain.User) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.api.DeleteEntry(r.Context(), user.ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /timer reports the running timer; {"active": false} when none.
func (s *Server) activeTimer(w http.ResponseWriter, r *http.Request, user *domain.User) {
	display, err := s.api.ActiveTimerDisplay(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, display)
}

// startRequest is the body of POST /timer/start. Both fields are optional.
type startRequest struct {
	ProjectID   *int64 `json:"project,omitempty"`
	Description string `json:"description,omitempty"`
}

func (s *Server) startTimer(w http.ResponseWriter, r *http.Request, user *domain.User) {
	var req startRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	entry, err := s.api.StartTimer(r.Context(), user.ID, req.ProjectID, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// POST /timer/stop answers 204 when nothing was running.
func (s *Server) stopTimer(w http.ResponseWriter, r *http.Request, user *domain.User) {
	entry, err := s.api.StopActiveTimer(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entry == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// GET /report?from=&to=&project=&client=
func (s *Server) report(w http.ResponseWriter, r *http.Request, user *domain.User) {
	var (
		criteria api.ReportCriteria
		err      error
	)
	if criteria.From, err = queryDate(r, "from"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if criteria.To, err = queryDate(r, "to"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if criteria.ProjectID, err = queryID(r, "project"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if criteria.ClientID, err = queryID(r, "client"); err != nil {
		s.writeError(w, r, err)
		return
	}

	report, err := s.api.Report(r.Context(), user.ID, criteria)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) listClients(w http.ResponseWriter, r *http.Request, user *domain.User) {
	clients, err := s.api.ListClients(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

// clientRequest is the body of POST /clients.
type clientRequest struct {
	Name string `json:"name"`
}

func (s *Server) createClient(w http.ResponseWriter, r *http.Request, user *domain.User) {
	var req clientRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	client, err := s.api.CreateClient(r.Context(), user.ID, req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request, user *domain.User) {
	projects, err := s.api.ListProjects(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request, user *domain.User) {
	var in api.ProjectInput
	if err := decode(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	project, err := s.api.CreateProject(r.Context(), user.ID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// statusRequest is the body of PUT /projects/{id}/status.
type statusRequest struct {
	Status domain.ProjectStatus `json:"status"`
}

func (s *Server) setProjectStatus(w http.ResponseWriter, r *http.Request, user *domain.User) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	project, err := s.api.SetProjectStatus(r.Context(), user.ID, id, req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}
