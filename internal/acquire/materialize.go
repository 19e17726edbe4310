package acquire

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"substation/internal/language"
	"substation/internal/services"
)

// SubtitlePath returns where the subtitle for the want lands next to its
// media file: "<media base>.<code[.hi|.forced]>.srt".
func SubtitlePath(mediaPath string, want language.Want) string {
	base := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
	return base + "." + want.FileSuffix() + ".srt"
}

// materialize writes the subtitle content next to the media file and returns
// the subtitle path. Empty content skips the write: job-based providers
// mutate the target out-of-band and the path is where their output lands.
func materialize(mediaPath string, want language.Want, content []byte) (string, error) {
	path := SubtitlePath(mediaPath, want)
	if len(content) == 0 {
		return path, nil
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", services.Wrap(services.ErrMaterialization, "acquire", "write subtitle",
			fmt.Sprintf("write %s", path), err)
	}
	return path, nil
}
