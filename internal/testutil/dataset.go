package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// StaffCSV is a small mixed-type dataset: an identifier column, two
// categorical columns and two numeric ones.
const StaffCSV = `EmployeeID,Name,Department,Age,Salary
101,Ann,Sales,25,40000
102,Bob,Marketing,35,50000
103,Cid,Sales,45,60000
104,Dee,Ops,55,70000
`

// WriteFile writes content to name inside a fresh temp dir and returns
// the path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// StaffDataset writes StaffCSV to staff.csv and returns its path.
func StaffDataset(t *testing.T) string {
	t.Helper()
	return WriteFile(t, "staff.csv", StaffCSV)
}
