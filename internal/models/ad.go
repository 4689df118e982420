package models

// Status is the lifecycle state of an ad record. It is decided by the managing
// side and is authoritative: the engine never recomputes it from dates.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusExpired  Status = "EXPIRED"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusExpired:
		return true
	}
	return false
}

// ActionType controls what happens when a viewer clicks a creative.
type ActionType string

const (
	// ActionRedirect opens RedirectURL in a new browsing context.
	ActionRedirect ActionType = "redirect"
	// ActionPopup shows an in-page overlay with the popup assets.
	ActionPopup ActionType = "popup"
)

// Valid reports whether a is one of the known action types.
func (a ActionType) Valid() bool {
	switch a {
	case ActionRedirect, ActionPopup:
		return true
	}
	return false
}

// Placement is a named region of a page where creatives may render.
type Placement string

const (
	PlacementTopLeft     Placement = "TOP_LEFT"
	PlacementTopRight    Placement = "TOP_RIGHT"
	PlacementRight       Placement = "RIGHT"
	PlacementFooterLeft  Placement = "FOOTER_LEFT"
	PlacementFooterRight Placement = "FOOTER_RIGHT"
	PlacementInline      Placement = "INLINE"
)

// Placements lists every zone in page order. Resolutions always carry an entry
// for each of these, even when it is empty.
var Placements = []Placement{
	PlacementTopLeft,
	PlacementTopRight,
	PlacementRight,
	PlacementFooterLeft,
	PlacementFooterRight,
	PlacementInline,
}

// Valid reports whether p is one of the fixed zones.
func (p Placement) Valid() bool {
	switch p {
	case PlacementTopLeft, PlacementTopRight, PlacementRight,
		PlacementFooterLeft, PlacementFooterRight, PlacementInline:
		return true
	}
	return false
}

// AdRecord is a single advertisement as produced by the management API.
// The engine only ever reads it. Nullable fields are pointers; a nil location
// target means the ad places no constraint on that dimension.
type AdRecord struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// ImageURL is the main creative. Ads without one are never rendered.
	ImageURL string `json:"imageUrl"`
	// PopupImageURL is shown inside the overlay; it falls back to ImageURL.
	PopupImageURL *string `json:"popupImageUrl,omitempty"`
	// RedirectURL is the destination for redirect ads, or the optional
	// call-to-action inside a popup overlay.
	RedirectURL      *string    `json:"redirectUrl,omitempty"`
	ActionType       ActionType `json:"actionType"`
	PopupDescription *string    `json:"popupDescription,omitempty"`
	// Pages lists the page keys this ad may appear on.
	Pages     []string  `json:"pages"`
	Placement Placement `json:"placement"`
	// Position orders ads within a zone, lowest first. Ties are allowed.
	Position      int     `json:"position"`
	TargetState   *string `json:"targetState,omitempty"`
	TargetCity    *string `json:"targetCity,omitempty"`
	TargetPincode *string `json:"targetPincode,omitempty"`
	StartDate     *Date   `json:"startDate,omitempty"`
	EndDate       *Date   `json:"endDate,omitempty"`
	Status        Status  `json:"status"`
}

// OnPage reports whether pageKey is one of the ad's pages.
func (a AdRecord) OnPage(pageKey string) bool {
	for _, p := range a.Pages {
		if p == pageKey {
			return true
		}
	}
	return false
}

// HasImage reports whether the ad carries a main creative asset.
func (a AdRecord) HasImage() bool {
	return a.ImageURL != ""
}

// OverlayImageURL returns the popup image, falling back to the main image.
func (a AdRecord) OverlayImageURL() string {
	if a.PopupImageURL != nil && *a.PopupImageURL != "" {
		return *a.PopupImageURL
	}
	return a.ImageURL
}

// Clone returns a deep copy so callers can never alias store-owned slices.
func (a AdRecord) Clone() AdRecord {
	c := a
	if a.Pages != nil {
		c.Pages = append([]string(nil), a.Pages...)
	}
	return c
}

// StringPtr returns a pointer to s. Handy for literals of nullable fields.
func StringPtr(s string) *string { return &s }

// DatePtr returns a pointer to d.
func DatePtr(d Date) *Date { return &d }
