package db

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/patrickwarner/adslots/internal/models"
)

func TestAdRowRecordNulls(t *testing.T) {
	row := adRow{
		ID:         "a",
		Title:      "Title",
		ImageURL:   "a.png",
		ActionType: "popup",
		Pages:      []string{"HOME"},
		Placement:  "SIDEBAR",
		Position:   3,
		Status:     "ACTIVE",
	}
	rec := row.record()
	assert.Nil(t, rec.PopupImageURL)
	assert.Nil(t, rec.RedirectURL)
	assert.Nil(t, rec.TargetState)
	assert.Nil(t, rec.StartDate)
	assert.Nil(t, rec.EndDate)
	assert.Equal(t, models.Placement("SIDEBAR"), rec.Placement, "unknown placement must survive loading")
	assert.Equal(t, models.ActionPopup, rec.ActionType)
	assert.Equal(t, 3, rec.Position)
}

func TestAdRowRecordValues(t *testing.T) {
	row := adRow{
		ID:            "b",
		TargetState:   sql.NullString{String: "TX", Valid: true},
		TargetPincode: sql.NullString{String: "", Valid: true},
		StartDate:     sql.NullTime{Time: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Valid: true},
		EndDate:       sql.NullTime{Time: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), Valid: true},
	}
	rec := row.record()
	if assert.NotNil(t, rec.TargetState) {
		assert.Equal(t, "TX", *rec.TargetState)
	}
	assert.Nil(t, rec.TargetPincode, "empty target column loads as untargeted")
	assert.Equal(t, models.MustParseDate("2024-06-01"), *rec.StartDate)
	assert.Equal(t, models.MustParseDate("2024-06-30"), *rec.EndDate)
}

func TestArgsOrderMatchesColumns(t *testing.T) {
	ad := models.AdRecord{ID: "c", Title: "t", Status: models.StatusActive}
	a := args(ad)
	assert.Len(t, a, 16)
	assert.Equal(t, "c", a[0])
	assert.Equal(t, "ACTIVE", a[15])
}
