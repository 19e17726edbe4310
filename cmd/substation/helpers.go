package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"substation/internal/language"
	"substation/internal/library"
)

// itemTitle formats a library item as "Title (Year)", falling back to the
// media file name when the title is blank.
func itemTitle(item *library.Item) string {
	if item == nil {
		return ""
	}
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = titleFromPath(item.Path)
	}
	if item.Year > 0 {
		return fmt.Sprintf("%s (%d)", title, item.Year)
	}
	return title
}

// titleFromPath derives a display title from a media file name.
func titleFromPath(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.TrimSpace(base)
}

// parseLanguageList parses a comma-separated list of language tags such as
// "en,es:hi,pt:forced". Blank segments are skipped.
func parseLanguageList(value string) ([]language.Want, error) {
	var wants []language.Want
	for _, part := range strings.Split(value, ",") {
		want := language.ParseTag(part)
		if want.Code == "" {
			continue
		}
		wants = append(wants, want)
	}
	if len(wants) == 0 {
		return nil, errors.New("at least one language tag is required (for example \"en\" or \"es:hi\")")
	}
	return wants, nil
}

// missingTags expands an item's stored missing-languages state into display
// tags.
func missingTags(item *library.Item) []string {
	if item == nil {
		return nil
	}
	wants := language.ParseMissing(item.MissingSubtitles)
	tags := make([]string, 0, len(wants))
	for _, want := range wants {
		tags = append(tags, want.Tag())
	}
	return tags
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
