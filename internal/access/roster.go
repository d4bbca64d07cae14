package access

// Resident roster CSV import. Estate management systems export the
// resident list as CSV; some export UTF-16 with a BOM, so the reader
// sniffs and decodes before parsing.

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"estatewatch/internal/auth"
)

// Definition of fields in a roster CSV export.
type RosterDefinition struct {
	EmailField string
	RoleField  string

	Language string // Language code, e.g. "en"
}

// Known field names in roster exports. Management software vendors
// rename these between releases, so several definitions are tried.
var RosterDefinitions = []RosterDefinition{
	{
		EmailField: "PRIMARY E-MAIL",
		RoleField:  "ESTATE ROLE",
		Language:   "en",
	},
	{
		EmailField: "EMAIL",
		RoleField:  "ROLE",
		Language:   "generic",
	},
}

// RosterEntry is one imported user.
type RosterEntry struct {
	Email string
	Role  auth.Role
}

// ReadRoster parses a roster CSV file into entries. Rows with a blank or
// unknown role default to Resident.
func ReadRoster(path string) ([]RosterEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster file: %w", err)
	}
	defer f.Close()

	reader, err := newBOMAwareReader(f)
	if err != nil {
		return nil, err
	}

	reader.LazyQuotes = true
	reader.FieldsPerRecord = 0

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read roster header: %w", err)
	}

	idxEmail, idxRole := -1, -1
	for _, def := range RosterDefinitions {
		idxEmail, idxRole = -1, -1
		for i, h := range headers {
			switch strings.ToUpper(strings.TrimSpace(h)) {
			case def.EmailField:
				idxEmail = i
			case def.RoleField:
				idxRole = i
			}
		}
		if idxEmail != -1 {
			break
		}
	}
	if idxEmail == -1 {
		return nil, fmt.Errorf("roster file missing required e-mail field")
	}

	var entries []RosterEntry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading roster: %w", err)
		}

		email := strings.TrimSpace(record[idxEmail])
		if err := ValidEmail(email); err != nil {
			slog.Debug("Skipping roster row with invalid e-mail", "email", email)
			continue
		}

		role := auth.RoleResident
		if idxRole != -1 && idxRole < len(record) {
			if parsed, err := auth.ParseRole(strings.TrimSpace(record[idxRole])); err == nil {
				role = parsed
			}
		}

		entries = append(entries, RosterEntry{Email: email, Role: role})
	}

	return entries, nil
}

// newBOMAwareReader returns a CSV reader, decoding UTF-16 when the file
// starts with a BOM.
func newBOMAwareReader(f *os.File) (*csv.Reader, error) {
	bom := make([]byte, 2)
	n, err := f.Read(bom)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read BOM: %w", err)
	}

	if n == 2 && (bom[0] == 0xFE && bom[1] == 0xFF || bom[0] == 0xFF && bom[1] == 0xFE) {
		// UTF-16 BOM detected
		utf16bom := unicode.BOMOverride(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
		utf16Reader := transform.NewReader(io.MultiReader(
			// Prepend BOM bytes back to stream
			strings.NewReader(string(bom[:n])),
			f,
		), utf16bom)
		return csv.NewReader(utf16Reader), nil
	}

	// No BOM, assume sensible UTF-8
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek roster file: %w", err)
	}
	return csv.NewReader(f), nil
}

// FindRosterFiles scans the roster folder for CSV files.
func FindRosterFiles(root string) ([]string, error) {
	if !filepath.IsAbs(root) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("unable to get current working directory: %w", err)
		}
		root = filepath.Join(cwd, root)
	}

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("roster folder does not exist: %s", root)
		}
		return nil, fmt.Errorf("error checking roster folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("roster folder is not a directory: %s", root)
	}

	var files []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(strings.ToLower(info.Name()), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
