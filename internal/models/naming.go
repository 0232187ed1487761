package models

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

var khzSuffix = regexp.MustCompile(`\([^)]*kHz\)$`)

// OutputName returns the server-relative name the server writes for a source file.
// A positive sample rate tags the stem with "(NNkHz)", replacing an existing tag.
func OutputName(relPath string, sampleRate int) string {
	dir, file := path.Split(relPath)
	stem := strings.TrimSuffix(file, path.Ext(file))
	if sampleRate > 0 {
		tag := fmt.Sprintf("(%dkHz)", sampleRate/1000)
		if khzSuffix.MatchString(stem) {
			stem = khzSuffix.ReplaceAllLiteralString(stem, tag)
		} else {
			stem = stem + " " + tag
		}
	}
	return dir + stem + ".m4a"
}
