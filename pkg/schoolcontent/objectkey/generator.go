// Package objectkey generates collision-free, traversal-safe object names
// for uploaded files. A generated name is
// "<timestamp>_<random hex suffix>_<sanitized original name>": the timestamp
// keeps listings roughly chronological, the random suffix guarantees two
// concurrent uploads of the same file never contend for a key, and the
// sanitized original name keeps objects recognizable to operators.
package objectkey

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/schoolsite/school-content/pkg/utils"
)

const timestampLayout = "20060102150405"

// suffixLength is the number of hex characters taken from a random UUID.
const suffixLength = 8

// Generate returns a unique object name derived from the original filename.
func Generate(originalName string) string {
	return generateAt(time.Now(), uuid.New(), originalName)
}

func generateAt(t time.Time, id uuid.UUID, originalName string) string {
	suffix := strings.ReplaceAll(id.String(), "-", "")[:suffixLength]
	return fmt.Sprintf("%s_%s_%s", t.Format(timestampLayout), suffix, SanitizeName(originalName))
}

// SanitizeName strips directory components and normalizes the filename so it
// is safe as a single path segment on every backend. Empty or fully
// stripped names become "file".
func SanitizeName(name string) string {
	// Uploaded names may carry path separators from either OS family.
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = utils.SanitizeFilename(name)

	replacer := strings.NewReplacer(
		"/", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	name = replacer.Replace(name)

	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
