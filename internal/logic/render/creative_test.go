package render

import (
	"strings"
	"testing"

	"github.com/patrickwarner/adslots/internal/logic/dispatch"
	"github.com/patrickwarner/adslots/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestComposeCreativeHTML(t *testing.T) {
	ad := models.AdRecord{
		ID:          "a1",
		Title:       `Sale "today"`,
		ImageURL:    "https://cdn.example.com/a.png?x=1&y=2",
		ActionType:  models.ActionRedirect,
		RedirectURL: models.StringPtr("https://shop.example.com"),
	}
	out := ComposeCreativeHTML(ad)
	assert.True(t, strings.HasPrefix(out, "<img "))
	assert.Contains(t, out, `src="https://cdn.example.com/a.png?x=1&amp;y=2"`)
	assert.Contains(t, out, `alt="Sale &#34;today&#34;"`)
	assert.Contains(t, out, `data-action="navigate"`)
	assert.Contains(t, out, `data-href="https://shop.example.com"`)
}

func TestComposeCreativeHTMLPopup(t *testing.T) {
	ad := models.AdRecord{ID: "p", ImageURL: "https://cdn.example.com/x.png", ActionType: models.ActionPopup}
	out := ComposeCreativeHTML(ad)
	assert.Contains(t, out, `data-action="overlay"`)
	assert.Contains(t, out, `alt="Advertisement"`)
	assert.NotContains(t, out, "data-href")
}

func TestComposeCreativeHTMLNoImage(t *testing.T) {
	assert.Empty(t, ComposeCreativeHTML(models.AdRecord{ID: "x", ActionType: models.ActionPopup}))
}

func TestComposeCreativeHTMLRefusesScriptURLs(t *testing.T) {
	ad := models.AdRecord{
		ID:          "r",
		ImageURL:    "https://cdn.example.com/r.png",
		ActionType:  models.ActionRedirect,
		RedirectURL: models.StringPtr("javascript:alert(document.cookie)"),
	}
	out := ComposeCreativeHTML(ad)
	assert.NotEmpty(t, out)
	assert.NotContains(t, out, "data-href")
	assert.NotContains(t, out, "javascript:")

	ad.ImageURL = "javascript:alert(1)"
	assert.Empty(t, ComposeCreativeHTML(ad))
	assert.Equal(t, "<p>none</p>", ComposeZoneHTML(models.PlacementRight, []models.AdRecord{ad}, "<p>none</p>"))
}

func TestComposeOverlayHTMLRefusesScriptURLs(t *testing.T) {
	out := ComposeOverlayHTML(dispatch.Overlay{
		AdID:      "p",
		ImageURL:  "data:image/svg+xml,<svg onload=alert(1)>",
		Title:     "Offer",
		ActionURL: "javascript:alert(document.cookie)",
	})
	assert.Contains(t, out, "<h2>Offer</h2>")
	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, "href=")
	assert.NotContains(t, out, "javascript:")
}

func TestComposeOverlayHTML(t *testing.T) {
	out := ComposeOverlayHTML(dispatch.Overlay{
		AdID:        "p",
		ImageURL:    "https://cdn.example.com/pop.png",
		Title:       "Offer",
		Description: "<b>now</b>",
		ActionURL:   "https://example.com",
	})
	assert.Contains(t, out, `<img src="https://cdn.example.com/pop.png" alt="Offer">`)
	assert.Contains(t, out, "<p>&lt;b&gt;now&lt;/b&gt;</p>")
	assert.Contains(t, out, `href="https://example.com"`)

	bare := ComposeOverlayHTML(dispatch.Overlay{AdID: "p", ImageURL: "https://cdn.example.com/pop.png", Title: "Offer"})
	assert.NotContains(t, bare, "<p>")
	assert.NotContains(t, bare, "href=")
}

func TestComposeZoneHTML(t *testing.T) {
	ads := []models.AdRecord{
		{ID: "first", ImageURL: "https://cdn.example.com/1.png", ActionType: models.ActionPopup},
		{ID: "skip", ActionType: models.ActionPopup},
		{ID: "second", ImageURL: "https://cdn.example.com/2.png", ActionType: models.ActionPopup},
	}
	out := ComposeZoneHTML(models.PlacementRight, ads, "<p>fallback</p>")
	assert.Contains(t, out, `data-zone="RIGHT"`)
	assert.Less(t, strings.Index(out, `data-ad-id="first"`), strings.Index(out, `data-ad-id="second"`))
	assert.NotContains(t, out, "skip")

	assert.Equal(t, "<p>fallback</p>", ComposeZoneHTML(models.PlacementFooterLeft, nil, "<p>fallback</p>"))
}
