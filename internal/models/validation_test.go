package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validAd() AdRecord {
	return AdRecord{
		ID:          "ad-1",
		Title:       "Summer sale",
		ImageURL:    "https://cdn.example.com/sale.png",
		ActionType:  ActionPopup,
		Pages:       []string{"HOME"},
		Placement:   PlacementInline,
		TargetState: StringPtr("TX"),
		TargetCity:  StringPtr("Austin"),
		StartDate:   DatePtr(MustParseDate("2024-01-01")),
		EndDate:     DatePtr(MustParseDate("2024-12-31")),
		Status:      StatusActive,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AdRecord)
		want   string
	}{
		{"ok", func(*AdRecord) {}, ""},
		{"missing title", func(a *AdRecord) { a.Title = " " }, "title is required"},
		{"missing image", func(a *AdRecord) { a.ImageURL = "" }, "imageUrl is required"},
		{"relative image", func(a *AdRecord) { a.ImageURL = "sale.png" }, "imageUrl must be an http(s) URL"},
		{"script popup image", func(a *AdRecord) { a.PopupImageURL = StringPtr("javascript:alert(1)") }, "popupImageUrl must be"},
		{"script redirect", func(a *AdRecord) { a.RedirectURL = StringPtr("javascript:alert(document.cookie)") }, "redirectUrl must be"},
		{"data redirect", func(a *AdRecord) { a.RedirectURL = StringPtr("data:text/html,<script>x</script>") }, "redirectUrl must be"},
		{"http redirect", func(a *AdRecord) { a.RedirectURL = StringPtr("http://shop.example.com/p?q=1") }, ""},
		{"empty redirect", func(a *AdRecord) { a.RedirectURL = StringPtr("") }, ""},
		{"no pages", func(a *AdRecord) { a.Pages = []string{""} }, "at least one page"},
		{"missing state", func(a *AdRecord) { a.TargetState = nil }, "targetState is required"},
		{"blank city", func(a *AdRecord) { a.TargetCity = StringPtr("") }, "targetCity is required"},
		{"missing start", func(a *AdRecord) { a.StartDate = nil }, "startDate is required"},
		{"missing end", func(a *AdRecord) { a.EndDate = nil }, "endDate is required"},
		{"inverted window", func(a *AdRecord) { a.StartDate = DatePtr(MustParseDate("2025-01-01")) }, "must not be after"},
		{"bad placement", func(a *AdRecord) { a.Placement = "HEADER" }, `unknown placement "HEADER"`},
		{"bad action", func(a *AdRecord) { a.ActionType = "modal" }, "unknown actionType"},
		{"bad status", func(a *AdRecord) { a.Status = "PAUSED" }, "unknown status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ad := validAd()
			tt.mutate(&ad)
			err := ad.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidAd)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestOverlayImageFallback(t *testing.T) {
	ad := AdRecord{ImageURL: "x.png"}
	assert.Equal(t, "x.png", ad.OverlayImageURL())
	ad.PopupImageURL = StringPtr("")
	assert.Equal(t, "x.png", ad.OverlayImageURL())
	ad.PopupImageURL = StringPtr("pop.png")
	assert.Equal(t, "pop.png", ad.OverlayImageURL())
}

func TestIsWebURL(t *testing.T) {
	assert.True(t, IsWebURL("https://cdn.example.com/a.png"))
	assert.True(t, IsWebURL("HTTP://Example.com"))
	assert.False(t, IsWebURL("javascript:alert(1)"))
	assert.False(t, IsWebURL(" javascript:alert(1)"))
	assert.False(t, IsWebURL("//evil.example.com/x"))
	assert.False(t, IsWebURL("a.png"))
	assert.False(t, IsWebURL(""))
}
