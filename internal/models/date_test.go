package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateCompare(t *testing.T) {
	d := MustParseDate("2024-03-15")
	assert.Equal(t, 0, d.Compare(MustParseDate("2024-03-15")))
	assert.True(t, d.Before(MustParseDate("2024-03-16")))
	assert.True(t, d.After(MustParseDate("2023-12-31")))
	assert.True(t, d.Before(MustParseDate("2024-04-01")))
}

func TestDateOfIgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2024, 3, 15, 0, 0, 1, 0, time.UTC)
	night := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, DateOf(morning), DateOf(night))
}

func TestDateJSON(t *testing.T) {
	var ad AdRecord
	err := json.Unmarshal([]byte(`{"id":"a","startDate":"2024-01-02","endDate":null}`), &ad)
	require.NoError(t, err)
	require.NotNil(t, ad.StartDate)
	assert.Equal(t, "2024-01-02", ad.StartDate.String())
	assert.Nil(t, ad.EndDate)

	out, err := json.Marshal(ad.StartDate)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-02"`, string(out))
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := ParseDate("15/03/2024")
	assert.Error(t, err)
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-05-01", d.String())
	require.NoError(t, d.Scan("2024-06-02"))
	assert.Equal(t, "2024-06-02", d.String())
	assert.Error(t, d.Scan(42))
}
