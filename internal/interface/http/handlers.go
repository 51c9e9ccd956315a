package http

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/studyloop/studyloop/internal/application/command"
	"github.com/studyloop/studyloop/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESSION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type submitAttemptRequest struct {
	// Answer is the raw submitted answer: a number for quizzes, a boolean
	// for yes/no lessons, a string for short answers.
	Answer any `json:"answer"`

	// TimeSpentSeconds is optional client-reported time on task.
	TimeSpentSeconds *int `json:"timeSpentSeconds,omitempty"`
}

// handleSubmitAttempt grades one answer submission.
// POST /api/v1/lessons/{lessonId}/attempts
func (s *Server) handleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	lessonID, err := uuid.Parse(mux.Vars(r)["lessonId"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "invalid lesson ID")
		return
	}

	var req submitAttemptRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result, err := s.deps.SubmitAttempt.Handle(r.Context(), command.SubmitAttemptCommand{
		LessonID:         lessonID,
		UserID:           userIDFromContext(r.Context()),
		Answer:           req.Answer,
		TimeSpentSeconds: req.TimeSpentSeconds,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// handleGetProfile serves the gamification profile.
// GET /api/v1/gamification/profile?classId=...
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	q := query.GetProgressQuery{UserID: userIDFromContext(r.Context())}

	if raw := r.URL.Query().Get("classId"); raw != "" {
		classID, err := uuid.Parse(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "validation_error", "invalid class ID")
			return
		}
		q.ClassID = &classID
	}

	snapshot, err := s.deps.GetProgress.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// handleListAchievements serves the full catalog with earned markers.
// GET /api/v1/gamification/achievements
func (s *Server) handleListAchievements(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.ListAchievements.Handle(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGetLeaderboard serves a class leaderboard. The caller must be a
// member of the class they ask about.
// GET /api/v1/classes/{classId}/leaderboard?limit=10
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	classID, err := uuid.Parse(mux.Vars(r)["classId"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "invalid class ID")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "validation_error", "invalid limit")
			return
		}
	}

	entries, err := s.deps.GetLeaderboard.Handle(r.Context(), query.GetLeaderboardQuery{
		ClassID: classID,
		Limit:   limit,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if entries == nil {
		entries = []query.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"classId": classID.String(),
		"entries": entries,
	})
}
