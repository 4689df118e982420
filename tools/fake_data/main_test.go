package main

import (
	"math/rand"
	"testing"

	"github.com/patrickwarner/adslots/internal/models"
)

func TestRandomAdIsValid(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	today := models.MustParseDate("2024-06-15")
	pages := []string{"HOME", "EVENTS"}

	for i := 0; i < 200; i++ {
		ad := randomAd(r, pages, today)
		if err := ad.Validate(); err != nil {
			t.Fatalf("ad %d invalid: %v", i, err)
		}
		for _, p := range ad.Pages {
			if p != "HOME" && p != "EVENTS" {
				t.Fatalf("unexpected page %q", p)
			}
		}
	}
}

func TestSplitPages(t *testing.T) {
	got := splitPages(" HOME, ,EVENTS ")
	if len(got) != 2 || got[0] != "HOME" || got[1] != "EVENTS" {
		t.Fatalf("unexpected pages %v", got)
	}
	if got := splitPages(""); len(got) != 1 || got[0] != "HOME" {
		t.Fatalf("empty input should default to HOME, got %v", got)
	}
}
