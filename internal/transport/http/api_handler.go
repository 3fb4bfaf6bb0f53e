package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"classroom-live-service/internal/app"
	"classroom-live-service/internal/auth"
	"classroom-live-service/internal/domain"
)

// APIHandler exposes the HTTP mutations that drive real-time publishing.
// Every handler persists (where applicable) before publishing; a degraded
// real-time layer never fails these requests.
type APIHandler struct {
	tests         *app.LiveTestService
	classrooms    *app.ClassroomService
	notifications *app.NotificationService
	verifier      *auth.Verifier
}

func NewAPIHandler(tests *app.LiveTestService, classrooms *app.ClassroomService, notifications *app.NotificationService, verifier *auth.Verifier) *APIHandler {
	return &APIHandler{tests: tests, classrooms: classrooms, notifications: notifications, verifier: verifier}
}

// Register wires all API routes onto the mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/tests/{id}/participants", h.withAuth(h.joinTest))
	mux.HandleFunc("POST /api/tests/{id}/submissions", h.withAuth(h.submitAnswer))
	mux.HandleFunc("POST /api/tests/{id}/end", h.withAuth(h.requireTeacher(h.endTest)))
	mux.HandleFunc("POST /api/quizzes/{id}/participants", h.withAuth(h.joinQuickQuiz))
	mux.HandleFunc("POST /api/quizzes/{id}/start", h.withAuth(h.requireTeacher(h.startQuickQuiz)))
	mux.HandleFunc("POST /api/quizzes/{id}/end", h.withAuth(h.requireTeacher(h.endQuickQuiz)))
	mux.HandleFunc("GET /api/classrooms/{id}/announcements", h.withAuth(h.listAnnouncements))
	mux.HandleFunc("POST /api/classrooms/{id}/announcements", h.withAuth(h.requireTeacher(h.addAnnouncement)))
	mux.HandleFunc("PUT /api/classrooms/{id}/announcements/{announcementId}", h.withAuth(h.requireTeacher(h.updateAnnouncement)))
	mux.HandleFunc("DELETE /api/classrooms/{id}/announcements/{announcementId}", h.withAuth(h.requireTeacher(h.deleteAnnouncement)))
	mux.HandleFunc("GET /api/classrooms/{id}/materials", h.withAuth(h.listMaterials))
	mux.HandleFunc("POST /api/classrooms/{id}/materials", h.withAuth(h.requireTeacher(h.addMaterial)))
	mux.HandleFunc("DELETE /api/classrooms/{id}/materials/{materialId}", h.withAuth(h.requireTeacher(h.deleteMaterial)))
	mux.HandleFunc("POST /api/notifications", h.withAuth(h.requireTeacher(h.sendNotification)))
}

type authedHandler func(w http.ResponseWriter, r *http.Request, principal domain.Principal)

func (h *APIHandler) withAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		principal, err := h.verifier.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r, principal)
	}
}

func (h *APIHandler) requireTeacher(next authedHandler) authedHandler {
	return func(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
		if principal.Role != "teacher" {
			writeError(w, http.StatusForbidden, "teacher role required")
			return
		}
		next(w, r, principal)
	}
}

type joinRequest struct {
	DisplayName string `json:"displayName"`
}

func (h *APIHandler) joinTest(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	var req joinRequest
	if !decode(w, r, &req) {
		return
	}
	lb, err := h.tests.Join(r.Context(), r.PathValue("id"), principal.UserID, req.DisplayName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

type submissionRequest struct {
	DisplayName string `json:"displayName"`
	QuestionID  string `json:"questionId"`
	OptionID    string `json:"optionId"`
}

func (h *APIHandler) submitAnswer(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	var req submissionRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.tests.SubmitAnswer(r.Context(), r.PathValue("id"), principal.UserID, req.DisplayName, domain.AnswerSubmission{
		QuestionID: req.QuestionID,
		OptionID:   req.OptionID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type endTestRequest struct {
	Message     string `json:"message"`
	RedirectURL string `json:"redirectUrl"`
}

func (h *APIHandler) endTest(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	var req endTestRequest
	if !decode(w, r, &req) {
		return
	}
	h.tests.EndTest(r.Context(), r.PathValue("id"), req.Message, req.RedirectURL)
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) joinQuickQuiz(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	var req joinRequest
	if !decode(w, r, &req) {
		return
	}
	h.tests.JoinQuickQuiz(r.Context(), r.PathValue("id"), principal.UserID, req.DisplayName)
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) startQuickQuiz(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	h.tests.StartQuickQuiz(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) endQuickQuiz(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	h.tests.EndQuickQuiz(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

type announcementRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h *APIHandler) addAnnouncement(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	var req announcementRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := h.classrooms.AddAnnouncement(r.Context(), r.PathValue("id"), principal.UserID, req.Title, req.Body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *APIHandler) updateAnnouncement(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	var req announcementRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := h.classrooms.UpdateAnnouncement(r.Context(), r.PathValue("id"), r.PathValue("announcementId"), req.Title, req.Body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *APIHandler) deleteAnnouncement(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	if err := h.classrooms.DeleteAnnouncement(r.Context(), r.PathValue("id"), r.PathValue("announcementId")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) listAnnouncements(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	list, err := h.classrooms.ListAnnouncements(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type materialRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

func (h *APIHandler) addMaterial(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	var req materialRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := h.classrooms.AddMaterial(r.Context(), r.PathValue("id"), req.Title, req.URL)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *APIHandler) deleteMaterial(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	if err := h.classrooms.DeleteMaterial(r.Context(), r.PathValue("id"), r.PathValue("materialId")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) listMaterials(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	list, err := h.classrooms.ListMaterials(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type notificationRequest struct {
	UserID string `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Link   string `json:"link"`
}

func (h *APIHandler) sendNotification(w http.ResponseWriter, r *http.Request, _ domain.Principal) {
	var req notificationRequest
	if !decode(w, r, &req) {
		return
	}
	n := h.notifications.Send(r.Context(), req.UserID, req.Title, req.Body, req.Link)
	writeJSON(w, http.StatusCreated, n)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrTestNotFound),
		errors.Is(err, domain.ErrAnnouncementNotFound),
		errors.Is(err, domain.ErrMaterialNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrOptionNotFound):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
