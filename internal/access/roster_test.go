package access

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/unicode"

	"estatewatch/internal/auth"
)

func writeRoster(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing roster: %v", err)
	}
	return path
}

func TestReadRoster(t *testing.T) {
	path := writeRoster(t, "roster.csv",
		"FIRST NAME,PRIMARY E-MAIL,ESTATE ROLE\n"+
			"Ada,ada@example.com,Resident\n"+
			"Bola,bola@example.com,Security Operative\n"+
			"Chidi,chidi@example.com,Estate Manager\n")

	entries, err := ReadRoster(path)
	if err != nil {
		t.Fatalf("ReadRoster: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[1].Email != "bola@example.com" || entries[1].Role != auth.RoleSecurityOperative {
		t.Errorf("unexpected entry: %+v", entries[1])
	}
}

func TestReadRosterGenericHeaders(t *testing.T) {
	path := writeRoster(t, "roster.csv",
		"Email,Role\n"+
			"ada@example.com,Admin\n")

	entries, err := ReadRoster(path)
	if err != nil {
		t.Fatalf("ReadRoster: %v", err)
	}
	if len(entries) != 1 || entries[0].Role != auth.RoleAdmin {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestReadRosterDefaultsToResident(t *testing.T) {
	path := writeRoster(t, "roster.csv",
		"PRIMARY E-MAIL,ESTATE ROLE\n"+
			"ada@example.com,\n"+
			"bola@example.com,Visiting Dignitary\n")

	entries, err := ReadRoster(path)
	if err != nil {
		t.Fatalf("ReadRoster: %v", err)
	}
	for _, e := range entries {
		if e.Role != auth.RoleResident {
			t.Errorf("%s: expected Resident fallback, got %s", e.Email, e.Role)
		}
	}
}

func TestReadRosterSkipsInvalidEmails(t *testing.T) {
	path := writeRoster(t, "roster.csv",
		"PRIMARY E-MAIL,ESTATE ROLE\n"+
			",Resident\n"+
			"not-an-email,Resident\n"+
			"ada@example.com,Resident\n")

	entries, err := ReadRoster(path)
	if err != nil {
		t.Fatalf("ReadRoster: %v", err)
	}
	if len(entries) != 1 || entries[0].Email != "ada@example.com" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestReadRosterUTF16(t *testing.T) {
	content := "PRIMARY E-MAIL,ESTATE ROLE\nada@example.com,Resident\n"

	encoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encoded, err := encoder.Bytes([]byte(content))
	if err != nil {
		t.Fatalf("encoding UTF-16: %v", err)
	}

	path := filepath.Join(t.TempDir(), "roster.csv")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("writing roster: %v", err)
	}

	entries, err := ReadRoster(path)
	if err != nil {
		t.Fatalf("ReadRoster: %v", err)
	}
	if len(entries) != 1 || entries[0].Email != "ada@example.com" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestReadRosterMissingEmailField(t *testing.T) {
	path := writeRoster(t, "roster.csv", "NAME,PHONE\nAda,555-0100\n")
	if _, err := ReadRoster(path); err == nil {
		t.Fatal("expected error for roster without an e-mail column")
	}
}

func TestFindRosterFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.CSV", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("writefile: %v", err)
		}
	}

	files, err := FindRosterFiles(dir)
	if err != nil {
		t.Fatalf("FindRosterFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 CSV files, got %d: %v", len(files), files)
	}

	if _, err := FindRosterFiles(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing folder")
	}
}
