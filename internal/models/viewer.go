package models

// ViewerContext carries what is known about the viewer's location. Each field
// is independently optional; nil means unknown.
type ViewerContext struct {
	State   *string `json:"state,omitempty"`
	City    *string `json:"city,omitempty"`
	Pincode *string `json:"pincode,omitempty"`
}

// NewViewerContext builds a ViewerContext treating empty strings as unknown.
func NewViewerContext(state, city, pincode string) ViewerContext {
	return ViewerContext{
		State:   optional(state),
		City:    optional(city),
		Pincode: optional(pincode),
	}
}

// Merge fills every unknown field of v from other and returns the result.
// Fields already known in v win.
func (v ViewerContext) Merge(other ViewerContext) ViewerContext {
	if v.State == nil {
		v.State = other.State
	}
	if v.City == nil {
		v.City = other.City
	}
	if v.Pincode == nil {
		v.Pincode = other.Pincode
	}
	return v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
