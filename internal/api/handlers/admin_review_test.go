package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/portal-acara/server/internal/audit"
	"github.com/portal-acara/server/internal/auth"
	"github.com/portal-acara/server/internal/domain/approval"
	"github.com/portal-acara/server/internal/domain/events"
	"github.com/portal-acara/server/internal/domain/organizers"
)

func newAdminReviewHandler(t *testing.T) (*AdminReviewHandler, *fakeOrganizerRepo, *fakeEventRepo) {
	t.Helper()
	organizerRepo := newFakeOrganizerRepo()
	eventRepo := newFakeEventRepo()
	auditLogger := audit.NewLogger(testLogger())
	handler := NewAdminReviewHandler(
		organizers.NewService(organizerRepo, auditLogger, testLogger()),
		events.NewAdminService(eventRepo, nil, auditLogger, testLogger()),
		testAssets{},
		testEnv,
	)
	return handler, organizerRepo, eventRepo
}

func adminActor(t *testing.T) approval.Actor {
	t.Helper()
	return approval.Actor{ID: newTestULID(t), Role: auth.RoleAdmin}
}

func (f *fakeOrganizerRepo) addPendingLink(t *testing.T, userID, name string) string {
	t.Helper()
	organizer := &organizers.Organizer{
		ID:        newTestULID(t),
		Name:      name,
		Type:      organizers.TypeInternal,
		CreatedAt: time.Now().UTC(),
	}
	link := &organizers.Link{
		ID:          newTestULID(t),
		UserID:      userID,
		OrganizerID: organizer.ID,
		Status:      organizers.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.organizers[organizer.ID] = organizer
	f.links[link.ID] = link
	return link.ID
}

func TestPendingOrganizers(t *testing.T) {
	handler, organizerRepo, _ := newAdminReviewHandler(t)
	organizerRepo.addPendingLink(t, newTestULID(t), "Himpunan Mahasiswa Informatika")
	organizerRepo.addApprovedLink(t, newTestULID(t), organizers.TypeInternal)

	req := httptest.NewRequest(http.MethodGet, "/admin/validasi/penyelenggara", nil)
	w := httptest.NewRecorder()
	handler.PendingOrganizers(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Items []linkView `json:"items"`
		Total int        `json:"total"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 {
		t.Fatalf("expected 1 pending link, got %d", resp.Total)
	}
	if resp.Items[0].Organizer == nil || resp.Items[0].Organizer.Name != "Himpunan Mahasiswa Informatika" {
		t.Errorf("expected the organizer to be joined onto the link")
	}
}

func TestDecideOrganizer(t *testing.T) {
	handler, organizerRepo, _ := newAdminReviewHandler(t)
	actor := adminActor(t)

	decide := func(linkID, body string) *httptest.ResponseRecorder {
		req := authedRequest(t, http.MethodPost, "/admin/validasi/penyelenggara/"+linkID, strings.NewReader(body), actor)
		req.SetPathValue("id", linkID)
		w := httptest.NewRecorder()
		handler.DecideOrganizer(w, req)
		return w
	}

	t.Run("approve", func(t *testing.T) {
		linkID := organizerRepo.addPendingLink(t, newTestULID(t), "UKM Musik")

		w := decide(linkID, `{"outcome":"approved"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var view linkView
		if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if view.Status != "approved" {
			t.Errorf("expected status approved, got %q", view.Status)
		}
	})

	t.Run("second decision conflicts", func(t *testing.T) {
		linkID := organizerRepo.addPendingLink(t, newTestULID(t), "UKM Catur")

		if w := decide(linkID, `{"outcome":"approved"}`); w.Code != http.StatusOK {
			t.Fatalf("first decision failed: %d", w.Code)
		}
		if w := decide(linkID, `{"outcome":"rejected","note":"ganda"}`); w.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejection requires a note", func(t *testing.T) {
		linkID := organizerRepo.addPendingLink(t, newTestULID(t), "UKM Panahan")

		if w := decide(linkID, `{"outcome":"rejected"}`); w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("pending is not a decision", func(t *testing.T) {
		linkID := organizerRepo.addPendingLink(t, newTestULID(t), "UKM Renang")

		if w := decide(linkID, `{"outcome":"pending"}`); w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("unknown link", func(t *testing.T) {
		if w := decide(newTestULID(t), `{"outcome":"approved"}`); w.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestDecideEvent(t *testing.T) {
	handler, _, eventRepo := newAdminReviewHandler(t)
	actor := adminActor(t)

	categoryID := newTestULID(t)
	eventRepo.addCategory(categoryID, "seminar")

	decide := func(eventID, body string) *httptest.ResponseRecorder {
		req := authedRequest(t, http.MethodPost, "/admin/validasi/acara/"+eventID, strings.NewReader(body), actor)
		req.SetPathValue("id", eventID)
		w := httptest.NewRecorder()
		handler.DecideEvent(w, req)
		return w
	}

	t.Run("publish", func(t *testing.T) {
		event := eventRepo.seedEvent(t, "Seminar Data", categoryID, events.StatusPending)

		w := decide(event.ID, `{"outcome":"published"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var view eventView
		if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if view.Status != "published" {
			t.Errorf("expected status published, got %q", view.Status)
		}
	})

	t.Run("reject stores the note", func(t *testing.T) {
		event := eventRepo.seedEvent(t, "Acara Kurang Jelas", categoryID, events.StatusPending)

		w := decide(event.ID, `{"outcome":"rejected","note":"deskripsi tidak lengkap"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var view eventView
		if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if view.AdminNote != "deskripsi tidak lengkap" {
			t.Errorf("expected the note on the response, got %q", view.AdminNote)
		}
	})

	t.Run("second decision conflicts", func(t *testing.T) {
		event := eventRepo.seedEvent(t, "Acara Final", categoryID, events.StatusPending)

		if w := decide(event.ID, `{"outcome":"published"}`); w.Code != http.StatusOK {
			t.Fatalf("first decision failed: %d", w.Code)
		}
		if w := decide(event.ID, `{"outcome":"rejected","note":"ganda"}`); w.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPendingEvents(t *testing.T) {
	handler, _, eventRepo := newAdminReviewHandler(t)

	categoryID := newTestULID(t)
	eventRepo.addCategory(categoryID, "seminar")
	eventRepo.seedEvent(t, "Menunggu Review", categoryID, events.StatusPending)
	eventRepo.seedEvent(t, "Sudah Tayang", categoryID, events.StatusPublished)

	req := httptest.NewRequest(http.MethodGet, "/admin/validasi/acara", nil)
	w := httptest.NewRecorder()
	handler.PendingEvents(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp eventListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 {
		t.Fatalf("expected 1 pending event, got %d", resp.Total)
	}
	if resp.Items[0].Title != "Menunggu Review" {
		t.Errorf("unexpected pending event %q", resp.Items[0].Title)
	}
}
