package dispatch

import (
	"sync"

	"github.com/patrickwarner/adslots/internal/models"
)

// Kind is the action a click resolves to.
type Kind string

const (
	// KindNavigate opens URL in a new browsing context. Nothing is retained.
	KindNavigate Kind = "navigate"
	// KindOverlay shows a popup overlay on the current page.
	KindOverlay Kind = "overlay"
	// KindNone means the click does nothing.
	KindNone Kind = "none"
)

// Overlay is the content of a popup overlay.
type Overlay struct {
	AdID        string `json:"ad_id"`
	ImageURL    string `json:"image_url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	// ActionURL, when set, backs the overlay's call-to-action button.
	ActionURL string `json:"action_url,omitempty"`
}

// Action is what the page should do in response to a click.
type Action struct {
	Kind    Kind     `json:"kind"`
	AdID    string   `json:"ad_id"`
	URL     string   `json:"url,omitempty"`
	Overlay *Overlay `json:"overlay,omitempty"`
}

// Dispatch decides how a click on ad is handled. It never fails: creatives
// that cannot act (no image, redirect without a destination, unknown action
// type) resolve to KindNone.
func Dispatch(ad models.AdRecord) Action {
	none := Action{Kind: KindNone, AdID: ad.ID}
	if !ad.HasImage() {
		return none
	}

	switch ad.ActionType {
	case models.ActionRedirect:
		if ad.RedirectURL == nil || *ad.RedirectURL == "" {
			return none
		}
		return Action{Kind: KindNavigate, AdID: ad.ID, URL: *ad.RedirectURL}
	case models.ActionPopup:
		ov := &Overlay{
			AdID:     ad.ID,
			ImageURL: ad.OverlayImageURL(),
			Title:    ad.Title,
		}
		if ad.PopupDescription != nil {
			ov.Description = *ad.PopupDescription
		}
		if ad.RedirectURL != nil {
			ov.ActionURL = *ad.RedirectURL
		}
		return Action{Kind: KindOverlay, AdID: ad.ID, Overlay: ov}
	default:
		return none
	}
}

// State is the interaction state of a page.
type State string

const (
	StateIdle         State = "idle"
	StateOverlayShown State = "overlay_shown"
)

// PageSession tracks the single overlay slot of one page view. Opening a
// second overlay replaces the first. Navigation is terminal for the click and
// leaves the overlay slot as it was.
type PageSession struct {
	mu      sync.Mutex
	overlay *Overlay
}

// NewPageSession returns an idle session.
func NewPageSession() *PageSession {
	return &PageSession{}
}

// Click dispatches ad and applies the result to the session.
func (s *PageSession) Click(ad models.AdRecord) Action {
	action := Dispatch(ad)
	if action.Kind == KindOverlay {
		ov := *action.Overlay
		s.mu.Lock()
		s.overlay = &ov
		s.mu.Unlock()
	}
	return action
}

// Dismiss closes the open overlay, returning false when none was open.
func (s *PageSession) Dismiss() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	open := s.overlay != nil
	s.overlay = nil
	return open
}

// Overlay returns a copy of the open overlay.
func (s *PageSession) Overlay() (Overlay, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlay == nil {
		return Overlay{}, false
	}
	return *s.overlay, true
}

// State reports whether an overlay is currently shown.
func (s *PageSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlay != nil {
		return StateOverlayShown
	}
	return StateIdle
}
