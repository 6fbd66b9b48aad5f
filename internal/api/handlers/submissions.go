package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/portal-acara/server/internal/api/problem"
	"github.com/portal-acara/server/internal/domain/events"
	"github.com/portal-acara/server/internal/domain/ids"
	"github.com/portal-acara/server/internal/domain/organizers"
	"github.com/portal-acara/server/internal/storage/blob"
)

// BlobStore is the slice of the blob layer the submission handlers need.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// SubmissionsHandler serves the authenticated submission surface: organizer
// registration and event proposals, both entering the admin review queue.
type SubmissionsHandler struct {
	Organizers *organizers.Service
	Events     *events.Service
	Blobs      BlobStore
	Env        string
}

func NewSubmissionsHandler(organizersService *organizers.Service, eventsService *events.Service, blobs BlobStore, env string) *SubmissionsHandler {
	return &SubmissionsHandler{
		Organizers: organizersService,
		Events:     eventsService,
		Blobs:      blobs,
		Env:        env,
	}
}

// SubmitOrganizer accepts a multipart form: name, type, description plus an
// optional logo image and registration document PDF.
func (h *SubmissionsHandler) SubmitOrganizer(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.Env)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(blob.MaxUploadSize); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	organizerType, ok := organizers.ParseOrganizerType(r.FormValue("type"))
	if !ok {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", FilterError{Field: "type", Message: "must be internal or external"}, h.Env)
		return
	}

	draft := organizers.Draft{
		Name:        r.FormValue("name"),
		Type:        organizerType,
		Description: r.FormValue("description"),
	}

	var uploaded []string
	cleanup := func() {
		for _, key := range uploaded {
			if err := h.Blobs.Delete(r.Context(), key); err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Str("key", key).Msg("orphaned upload cleanup failed")
			}
		}
	}

	logoKey, err := h.storeImage(r, "logo", blob.FolderLogos)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	if logoKey != "" {
		uploaded = append(uploaded, logoKey)
		draft.LogoKey = logoKey
	}

	documentKey, err := h.storeDocument(r, "document")
	if err != nil {
		cleanup()
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	if documentKey != "" {
		uploaded = append(uploaded, documentKey)
		draft.DocumentKey = documentKey
	}

	link, err := h.Organizers.Submit(r.Context(), actor.ID, draft)
	if err != nil {
		cleanup()
		var verr organizers.ValidationError
		switch {
		case errors.As(err, &verr):
			writeFieldProblem(w, r, verr.Field, verr.Message, err, h.Env)
		case errors.Is(err, organizers.ErrDuplicateName):
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Organizer name already registered", err, h.Env)
		case errors.Is(err, organizers.ErrPendingExists):
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "A pending submission already exists", err, h.Env)
		default:
			problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		}
		return
	}

	writeJSON(w, http.StatusCreated, newLinkView(link, h.Blobs))
}

// OrganizerStatus returns the caller's latest submission, decided or not.
func (h *SubmissionsHandler) OrganizerStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.Env)
	if !ok {
		return
	}

	link, err := h.Organizers.StatusFor(r.Context(), actor.ID)
	if err != nil {
		if errors.Is(err, organizers.ErrNoSubmission) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "No submission", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, newLinkView(link, h.Blobs))
}

// SubmitEvent accepts a multipart form with the event fields plus an
// optional poster image.
func (h *SubmissionsHandler) SubmitEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.Env)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(blob.MaxUploadSize); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	draft := events.Draft{
		Title:            r.FormValue("title"),
		Description:      r.FormValue("description"),
		Location:         r.FormValue("location"),
		RegistrationLink: r.FormValue("registration_link"),
		CategoryID:       r.FormValue("category_id"),
	}

	startTime, err := time.Parse(time.RFC3339, r.FormValue("start_time"))
	if err != nil {
		writeFieldProblem(w, r, "start_time", "must be RFC 3339", err, h.Env)
		return
	}
	draft.StartTime = startTime

	if raw := strings.TrimSpace(r.FormValue("end_time")); raw != "" {
		endTime, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeFieldProblem(w, r, "end_time", "must be RFC 3339", err, h.Env)
			return
		}
		draft.EndTime = &endTime
	}

	posterKey, err := h.storeImage(r, "poster", blob.FolderPosters)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	draft.PosterKey = posterKey

	event, err := h.Events.Submit(r.Context(), actor.ID, draft)
	if err != nil {
		if posterKey != "" {
			if delErr := h.Blobs.Delete(r.Context(), posterKey); delErr != nil {
				zerolog.Ctx(r.Context()).Warn().Err(delErr).Str("key", posterKey).Msg("orphaned upload cleanup failed")
			}
		}
		writeEventSubmitProblem(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, newEventView(event, h.Blobs))
}

// OwnEvents lists the caller's submissions in every state, with the admin
// note visible on rejected ones.
func (h *SubmissionsHandler) OwnEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.Env)
	if !ok {
		return
	}

	items, err := h.Events.ListOwn(r.Context(), actor.ID)
	if err != nil {
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, eventListResponse{Items: newEventViews(items, h.Blobs), Total: len(items)})
}

// WithdrawEvent deletes the caller's own pending or rejected event.
func (h *SubmissionsHandler) WithdrawEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.Env)
	if !ok {
		return
	}

	eventID, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	if err := h.Events.Withdraw(r.Context(), actor.ID, eventID); err != nil {
		switch {
		case errors.Is(err, events.ErrNotFound):
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, h.Env)
		case errors.Is(err, events.ErrForbidden):
			problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Forbidden", err, h.Env)
		default:
			problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeEventSubmitProblem(w http.ResponseWriter, r *http.Request, err error, env string) {
	var verr events.ValidationError
	switch {
	case errors.As(err, &verr):
		writeFieldProblem(w, r, verr.Field, verr.Message, err, env)
	case errors.Is(err, events.ErrNotOrganizer):
		problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Approved organizer required", err, env)
	case errors.Is(err, events.ErrLocationNotAllowed):
		writeFieldProblem(w, r, "location", "external organizers must hold events on campus", err, env)
	case errors.Is(err, events.ErrCategoryNotFound):
		writeFieldProblem(w, r, "category_id", "unknown category", err, env)
	case errors.Is(err, events.ErrDuplicateSlug):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Conflict", err, env)
	default:
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, env)
	}
}

func writeFieldProblem(w http.ResponseWriter, r *http.Request, field, message string, err error, env string) {
	problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env,
		problem.WithErrors(map[string]interface{}{field: message}))
}

// storeImage validates and uploads an optional image field, returning the
// stored object key or "" when the field is absent.
func (h *SubmissionsHandler) storeImage(r *http.Request, field, folder string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", FilterError{Field: field, Message: "unreadable upload"}
	}
	defer file.Close()

	contentType := uploadContentType(header)
	if !blob.ValidImageType(contentType) {
		return "", FilterError{Field: field, Message: "must be a JPEG, PNG or WebP image"}
	}

	assetID, err := ids.NewULID()
	if err != nil {
		return "", err
	}
	key := folder + "/" + strings.ToLower(assetID) + blob.AllowedImageTypes[contentType]
	if err := h.Blobs.Upload(r.Context(), key, contentType, file); err != nil {
		return "", err
	}
	return key, nil
}

// storeDocument validates and uploads an optional PDF field.
func (h *SubmissionsHandler) storeDocument(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", FilterError{Field: field, Message: "unreadable upload"}
	}
	defer file.Close()

	contentType := uploadContentType(header)
	if !blob.ValidDocumentType(contentType) {
		return "", FilterError{Field: field, Message: "must be a PDF document"}
	}

	assetID, err := ids.NewULID()
	if err != nil {
		return "", err
	}
	key := blob.FolderDocuments + "/" + strings.ToLower(assetID) + ".pdf"
	if err := h.Blobs.Upload(r.Context(), key, contentType, file); err != nil {
		return "", err
	}
	return key, nil
}

func uploadContentType(header *multipart.FileHeader) string {
	if header == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
}
