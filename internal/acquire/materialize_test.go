package acquire

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"substation/internal/language"
	"substation/internal/services"
)

func TestSubtitlePath(t *testing.T) {
	tests := []struct {
		media  string
		want   language.Want
		expect string
	}{
		{"/media/Heat (1995)/Heat.mkv", language.Want{Code: "en"}, "/media/Heat (1995)/Heat.en.srt"},
		{"/media/Heat.mkv", language.Want{Code: "es", HearingImpaired: true}, "/media/Heat.es.hi.srt"},
		{"/media/Heat.mkv", language.Want{Code: "pt", Forced: true}, "/media/Heat.pt.forced.srt"},
		{"/media/Heat", language.Want{Code: "en"}, "/media/Heat.en.srt"},
	}
	for _, tc := range tests {
		if got := SubtitlePath(tc.media, tc.want); got != tc.expect {
			t.Fatalf("SubtitlePath(%q, %s) = %q, want %q", tc.media, tc.want, got, tc.expect)
		}
	}
}

func TestMaterializeWritesContent(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "movie.mkv")

	path, err := materialize(media, language.Want{Code: "en"}, []byte("payload"))
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("read subtitle: %v", readErr)
	}
	if string(data) != "payload" {
		t.Fatalf("content = %q", data)
	}
}

func TestMaterializeSkipsEmptyContent(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "movie.mkv")

	path, err := materialize(media, language.Want{Code: "en"}, nil)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if path != filepath.Join(dir, "movie.en.srt") {
		t.Fatalf("path = %q", path)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("empty content must not write a file: %v", statErr)
	}
}

func TestMaterializeWrapsWriteFailure(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "movie.mkv")
	if err := os.Mkdir(filepath.Join(dir, "movie.en.srt"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	_, err := materialize(media, language.Want{Code: "en"}, []byte("payload"))
	if !errors.Is(err, services.ErrMaterialization) {
		t.Fatalf("err = %v, want materialization sentinel", err)
	}
}
