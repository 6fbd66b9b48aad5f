package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/portal-acara/server/internal/domain/approval"
	"github.com/portal-acara/server/internal/domain/events"
)

func newPublicEventsHandler(t *testing.T) (*PublicEventsHandler, *fakeEventRepo, *fakeOrganizerRepo) {
	t.Helper()
	eventRepo := newFakeEventRepo()
	organizerRepo := newFakeOrganizerRepo()
	service := events.NewService(eventRepo, organizerRepo, approval.NewGate(organizerRepo), []string{"unila"}, testLogger())
	return NewPublicEventsHandler(service, testAssets{}, testEnv), eventRepo, organizerRepo
}

func (f *fakeEventRepo) seedEvent(t *testing.T, title, categoryID string, status events.Status) *events.Event {
	t.Helper()
	event := &events.Event{
		ID:          newTestULID(t),
		Title:       title,
		Slug:        events.Slugify(title),
		Description: "Deskripsi " + title,
		Location:    "Gedung Serba Guna, Universitas Lampung",
		StartTime:   time.Now().UTC().Add(48 * time.Hour),
		CategoryID:  categoryID,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[event.ID] = event
	return event
}

func TestPublicEventsList(t *testing.T) {
	handler, eventRepo, _ := newPublicEventsHandler(t)

	seminarCat := newTestULID(t)
	artCat := newTestULID(t)
	eventRepo.addCategory(seminarCat, "seminar")
	eventRepo.addCategory(artCat, "seni-budaya")

	eventRepo.seedEvent(t, "Seminar Nasional AI", seminarCat, events.StatusPublished)
	eventRepo.seedEvent(t, "Pentas Teater", artCat, events.StatusPublished)
	eventRepo.seedEvent(t, "Seminar Tertunda", seminarCat, events.StatusPending)

	tests := []struct {
		name      string
		target    string
		wantTotal int
	}{
		{name: "all published", target: "/acara", wantTotal: 2},
		{name: "category filter", target: "/acara?kategori=seminar", wantTotal: 1},
		{name: "keyword filter", target: "/acara?q=teater", wantTotal: 1},
		{name: "no match", target: "/acara?q=konser", wantTotal: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			w := httptest.NewRecorder()
			handler.List(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
			}
			var resp eventListResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Total != tt.wantTotal {
				t.Errorf("expected total %d, got %d", tt.wantTotal, resp.Total)
			}
		})
	}
}

func TestPublicEventsGet(t *testing.T) {
	handler, eventRepo, _ := newPublicEventsHandler(t)

	categoryID := newTestULID(t)
	eventRepo.addCategory(categoryID, "seminar")
	published := eventRepo.seedEvent(t, "Kuliah Umum Ekonomi", categoryID, events.StatusPublished)
	pending := eventRepo.seedEvent(t, "Acara Belum Tayang", categoryID, events.StatusPending)

	t.Run("published resolves", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/acara/"+published.Slug, nil)
		req.SetPathValue("slug", published.Slug)
		w := httptest.NewRecorder()
		handler.Get(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var view eventView
		if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if view.Slug != published.Slug {
			t.Errorf("expected slug %q, got %q", published.Slug, view.Slug)
		}
	})

	t.Run("pending is invisible", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/acara/"+pending.Slug, nil)
		req.SetPathValue("slug", pending.Slug)
		w := httptest.NewRecorder()
		handler.Get(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", w.Code)
		}
	})

	t.Run("unknown slug", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/acara/tidak-ada", nil)
		req.SetPathValue("slug", "tidak-ada")
		w := httptest.NewRecorder()
		handler.Get(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", w.Code)
		}
	})
}
