package promptkit

import (
	"regexp"
	"strings"
)

// Metadata holds the fields parsed from a template file header.
// Absent fields default to "unknown".
type Metadata struct {
	Name        string
	Version     string
	LastUpdated string
	Purpose     string
}

var headerPatterns = map[string]*regexp.Regexp{
	"name":        regexp.MustCompile(`(?im)^#\s*Prompt:\s*(.+)$`),
	"version":     regexp.MustCompile(`(?im)^#\s*Version:\s*(.+)$`),
	"lastUpdated": regexp.MustCompile(`(?im)^#\s*Last Updated:\s*(.+)$`),
	"purpose":     regexp.MustCompile(`(?im)^#\s*Purpose:\s*(.+)$`),
}

// versionPattern is the dotted MAJOR.MINOR numeric form required by Validate.
var versionPattern = regexp.MustCompile(`^\d+\.\d+$`)

// parseHeader extracts metadata from the comment header of template content.
func parseHeader(content string) Metadata {
	get := func(key string) string {
		m := headerPatterns[key].FindStringSubmatch(content)
		if m == nil {
			return "unknown"
		}
		return strings.TrimSpace(m[1])
	}
	return Metadata{
		Name:        get("name"),
		Version:     get("version"),
		LastUpdated: get("lastUpdated"),
		Purpose:     get("purpose"),
	}
}
