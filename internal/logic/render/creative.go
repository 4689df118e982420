package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/patrickwarner/adslots/internal/logic/dispatch"
	"github.com/patrickwarner/adslots/internal/models"
)

const imgStyle = `style="max-width:100%;max-height:100%;width:auto;height:auto;display:block;cursor:pointer;"`

// ComposeCreativeHTML converts a creative into an img tag. The data
// attributes tell the client script what a click does so that pages can
// open redirects in a new browsing context without a round trip.
// Creatives without an http(s) image produce an empty string and are not
// rendered. A non-http(s) landing URL is never written into data-href.
func ComposeCreativeHTML(ad models.AdRecord) string {
	if !ad.HasImage() || !models.IsWebURL(ad.ImageURL) {
		return ""
	}

	alt := ad.Title
	if alt == "" {
		alt = "Advertisement"
	}

	action := dispatch.Dispatch(ad)
	parts := []string{
		fmt.Sprintf(`src="%s"`, html.EscapeString(ad.ImageURL)),
		fmt.Sprintf(`alt="%s"`, html.EscapeString(alt)),
		fmt.Sprintf(`data-ad-id="%s"`, html.EscapeString(ad.ID)),
		fmt.Sprintf(`data-action="%s"`, action.Kind),
	}
	if action.Kind == dispatch.KindNavigate && models.IsWebURL(action.URL) {
		parts = append(parts, fmt.Sprintf(`data-href="%s"`, html.EscapeString(action.URL)))
	}
	parts = append(parts, imgStyle)

	return fmt.Sprintf("<img %s>", strings.Join(parts, " "))
}

// ComposeOverlayHTML renders the popup overlay for a dispatched click.
// Image and link URLs that are not http(s) are left out.
func ComposeOverlayHTML(ov dispatch.Overlay) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="ad-overlay" role="dialog" data-ad-id="%s">`, html.EscapeString(ov.AdID))
	if models.IsWebURL(ov.ImageURL) {
		fmt.Fprintf(&b, `<img src="%s" alt="%s">`, html.EscapeString(ov.ImageURL), html.EscapeString(ov.Title))
	}
	fmt.Fprintf(&b, `<h2>%s</h2>`, html.EscapeString(ov.Title))
	if ov.Description != "" {
		fmt.Fprintf(&b, `<p>%s</p>`, html.EscapeString(ov.Description))
	}
	if models.IsWebURL(ov.ActionURL) {
		fmt.Fprintf(&b, `<a href="%s" target="_blank" rel="noopener">Learn more</a>`, html.EscapeString(ov.ActionURL))
	}
	b.WriteString(`<button type="button" data-dismiss="overlay">Close</button></div>`)
	return b.String()
}

// ComposeZoneHTML renders every creative of a zone in order. When the zone
// has nothing to show the caller-supplied fallback markup is returned as is.
func ComposeZoneHTML(zone models.Placement, ads []models.AdRecord, fallback string) string {
	var items []string
	for _, ad := range ads {
		if tag := ComposeCreativeHTML(ad); tag != "" {
			items = append(items, tag)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return fmt.Sprintf(`<div class="ad-zone" data-zone="%s">%s</div>`,
		html.EscapeString(string(zone)), strings.Join(items, ""))
}
