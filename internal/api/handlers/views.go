package handlers

import (
	"time"

	"github.com/portal-acara/server/internal/domain/categories"
	"github.com/portal-acara/server/internal/domain/events"
	"github.com/portal-acara/server/internal/domain/organizers"
	"github.com/portal-acara/server/internal/domain/users"
)

// AssetURLs resolves stored object keys to public URLs.
type AssetURLs interface {
	URL(key string) string
}

type eventView struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Description      string     `json:"description"`
	Location         string     `json:"location"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	RegistrationLink string     `json:"registration_link,omitempty"`
	PosterURL        string     `json:"poster_url,omitempty"`
	Category         string     `json:"category"`
	Organizer        string     `json:"organizer"`
	Status           string     `json:"status"`
	AdminNote        string     `json:"admin_note,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func newEventView(event *events.Event, assets AssetURLs) eventView {
	view := eventView{
		ID:               event.ID,
		Title:            event.Title,
		Slug:             event.Slug,
		Description:      event.Description,
		Location:         event.Location,
		StartTime:        event.StartTime,
		EndTime:          event.EndTime,
		RegistrationLink: event.RegistrationLink,
		Category:         event.CategoryName,
		Organizer:        event.OrganizerName,
		Status:           string(event.Status),
		AdminNote:        event.AdminNote,
		CreatedAt:        event.CreatedAt,
	}
	if assets != nil {
		view.PosterURL = assets.URL(event.PosterKey)
	}
	return view
}

func newEventViews(items []events.Event, assets AssetURLs) []eventView {
	views := make([]eventView, 0, len(items))
	for i := range items {
		views = append(views, newEventView(&items[i], assets))
	}
	return views
}

type eventListResponse struct {
	Items []eventView `json:"items"`
	Total int         `json:"total"`
}

type organizerView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
	DocumentURL string `json:"document_url,omitempty"`
}

type linkView struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	AdminNote string         `json:"admin_note,omitempty"`
	DecidedAt *time.Time     `json:"decided_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Organizer *organizerView `json:"organizer,omitempty"`
}

func newLinkView(link *organizers.Link, assets AssetURLs) linkView {
	view := linkView{
		ID:        link.ID,
		Status:    string(link.Status),
		AdminNote: link.AdminNote,
		DecidedAt: link.DecidedAt,
		CreatedAt: link.CreatedAt,
	}
	if link.Organizer != nil {
		organizer := organizerView{
			ID:          link.Organizer.ID,
			Name:        link.Organizer.Name,
			Type:        string(link.Organizer.Type),
			Description: link.Organizer.Description,
		}
		if assets != nil {
			organizer.LogoURL = assets.URL(link.Organizer.LogoKey)
			organizer.DocumentURL = assets.URL(link.Organizer.DocumentKey)
		}
		view.Organizer = &organizer
	}
	return view
}

type userView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsOrganizer bool   `json:"is_organizer"`
}

func newUserView(user *users.User, isOrganizer bool) userView {
	return userView{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        string(user.Role),
		IsOrganizer: isOrganizer,
	}
}

type categoryView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func newCategoryView(c *categories.Category) categoryView {
	return categoryView{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

func newCategoryViews(items []*categories.Category) []categoryView {
	views := make([]categoryView, 0, len(items))
	for _, c := range items {
		views = append(views, newCategoryView(c))
	}
	return views
}
