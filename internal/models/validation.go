package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAd is wrapped by every validation failure from Validate.
var ErrInvalidAd = errors.New("invalid ad")

// Validate enforces the fields the management API requires before an ad is
// persisted. The resolution engine itself never calls this: records that
// reach it malformed are simply not displayed.
func (a AdRecord) Validate() error {
	var problems []string
	if strings.TrimSpace(a.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(a.ImageURL) == "" {
		problems = append(problems, "imageUrl is required")
	} else if !IsWebURL(a.ImageURL) {
		problems = append(problems, "imageUrl must be an http(s) URL")
	}
	if a.PopupImageURL != nil && *a.PopupImageURL != "" && !IsWebURL(*a.PopupImageURL) {
		problems = append(problems, "popupImageUrl must be an http(s) URL")
	}
	if a.RedirectURL != nil && *a.RedirectURL != "" && !IsWebURL(*a.RedirectURL) {
		problems = append(problems, "redirectUrl must be an http(s) URL")
	}
	if len(nonEmpty(a.Pages)) == 0 {
		problems = append(problems, "at least one page is required")
	}
	if a.TargetState == nil || strings.TrimSpace(*a.TargetState) == "" {
		problems = append(problems, "targetState is required")
	}
	if a.TargetCity == nil || strings.TrimSpace(*a.TargetCity) == "" {
		problems = append(problems, "targetCity is required")
	}
	if a.StartDate == nil {
		problems = append(problems, "startDate is required")
	}
	if a.EndDate == nil {
		problems = append(problems, "endDate is required")
	}
	if a.StartDate != nil && a.EndDate != nil && a.StartDate.After(*a.EndDate) {
		problems = append(problems, "startDate must not be after endDate")
	}
	if !a.Placement.Valid() {
		problems = append(problems, fmt.Sprintf("unknown placement %q", a.Placement))
	}
	if !a.ActionType.Valid() {
		problems = append(problems, fmt.Sprintf("unknown actionType %q", a.ActionType))
	}
	if !a.Status.Valid() {
		problems = append(problems, fmt.Sprintf("unknown status %q", a.Status))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidAd, strings.Join(problems, "; "))
	}
	return nil
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
