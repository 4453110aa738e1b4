package reports

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ReportSuffix is the naming convention for a patient's stored report.
const ReportSuffix = "_report.pdf"

// ReportFilename returns the name a patient's report is stored under.
func ReportFilename(patientID string) string {
	return SecureFilename(patientID + ReportSuffix)
}

// IsPDF reports whether an uploaded file should be kept. Only the client
// supplied name is inspected; the match is case-sensitive.
func IsPDF(filename string) bool {
	return strings.HasSuffix(filename, ".pdf")
}

// SecureFilename reduces name to a flat ASCII file name: compatibility
// decomposition, non-ASCII dropped, separators and whitespace runs turned into
// underscores, anything outside [A-Za-z0-9_.-] removed, and leading/trailing
// dots and underscores trimmed. The result may be empty.
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)

	var ascii strings.Builder
	for _, r := range name {
		if r < 0x80 {
			ascii.WriteRune(r)
		}
	}

	flat := strings.ReplaceAll(ascii.String(), "/", " ")
	flat = strings.Join(strings.Fields(flat), "_")

	var out strings.Builder
	for _, r := range flat {
		if isSafeRune(r) {
			out.WriteRune(r)
		}
	}

	return strings.Trim(out.String(), "._")
}

func isSafeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '.', r == '-':
		return true
	}
	return false
}

// validName rejects anything that is not a single path element.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return filepath.Base(name) == name
}
