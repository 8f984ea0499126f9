package export

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultFilenamePattern is used when a config carries no pattern.
const DefaultFilenamePattern = "{template}_{date}"

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// SanitizeName replaces every character outside [A-Za-z0-9_-] with "_".
func SanitizeName(s string) string {
	return unsafeName.ReplaceAllString(s, "_")
}

// FileName expands pattern for an export taken at now.
//
// PLACEHOLDERS:
//   {template}  - The template name, sanitized
//   {date}      - YYYY-MM-DD
//   {time}      - HH-MM-SS
//   {timestamp} - Milliseconds since the Unix epoch
//   {uuid}      - A random UUID
//
// The format extension is appended when missing.
func FileName(pattern, templateName string, format Format, now time.Time) string {
	if pattern == "" {
		pattern = DefaultFilenamePattern
	}

	name := strings.NewReplacer(
		"{template}", SanitizeName(templateName),
		"{date}", now.Format("2006-01-02"),
		"{time}", now.Format("15-04-05"),
		"{timestamp}", strconv.FormatInt(now.UnixMilli(), 10),
	).Replace(pattern)

	if strings.Contains(name, "{uuid}") {
		name = strings.ReplaceAll(name, "{uuid}", uuid.New().String())
	}

	if format != "" && !strings.HasSuffix(strings.ToLower(name), format.Extension()) {
		name += format.Extension()
	}
	return name
}
