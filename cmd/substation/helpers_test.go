package main

import (
	"testing"

	"substation/internal/library"
)

func TestItemTitle(t *testing.T) {
	cases := []struct {
		name string
		item *library.Item
		want string
	}{
		{"with year", &library.Item{Title: "Heat", Year: 1995}, "Heat (1995)"},
		{"without year", &library.Item{Title: "Heat"}, "Heat"},
		{"falls back to file name", &library.Item{Path: "/media/Heat (1995).mkv"}, "Heat (1995)"},
		{"nil item", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := itemTitle(tc.item); got != tc.want {
				t.Fatalf("itemTitle = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTitleFromPath(t *testing.T) {
	if got := titleFromPath("/media/movies/Alien (1979).mkv"); got != "Alien (1979)" {
		t.Fatalf("titleFromPath = %q", got)
	}
}

func TestParseLanguageList(t *testing.T) {
	wants, err := parseLanguageList("en, ES:HI ,pt:forced,")
	if err != nil {
		t.Fatalf("parseLanguageList: %v", err)
	}
	if len(wants) != 3 {
		t.Fatalf("expected 3 wants, got %d", len(wants))
	}
	if wants[0].Code != "en" || wants[1].Code != "es" || !wants[1].HearingImpaired || !wants[2].Forced {
		t.Fatalf("unexpected wants: %+v", wants)
	}

	if _, err := parseLanguageList("  , "); err == nil {
		t.Fatal("expected error for empty list")
	}
}
