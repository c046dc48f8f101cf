package cli

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sift/internal/testutil"
)

func TestAskCommand(t *testing.T) {
	data := testutil.StaffDataset(t)

	stdout, _, err := execute(NewAskCommand(textOpts()), data, "What", "is", "the", "average", "age?")
	require.NoError(t, err)
	assert.Equal(t, "The **mean** of `Age` is **40.00**.\n", stdout)
}

func TestAskCommand_JSON(t *testing.T) {
	data := testutil.StaffDataset(t)

	stdout, _, err := execute(NewAskCommand(jsonOpts()), data, "highest salary? the maximum please")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   AskResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, AskResult{
		Operation: "max",
		Column:    "Salary",
		Value:     70000,
		Answer:    "The **max** of `Salary` is **70000.00**.",
	}, resp.Data)
}

func TestAskCommand_NotAnswerable(t *testing.T) {
	data := testutil.StaffDataset(t)

	_, stderr, err := execute(NewAskCommand(textOpts()), data, "who", "works", "in", "sales?")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "Error [E008]")
}

func TestDescribeCommand_Text(t *testing.T) {
	data := testutil.StaffDataset(t)

	stdout, _, err := execute(NewDescribeCommand(textOpts()), data)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "**Dataset Overview**: 4 rows, 5 columns"))
	assert.Contains(t, stdout, "**Numeric Columns**: 3")
	assert.Contains(t, stdout, "dtype")
	assert.Contains(t, stdout, "Marketing")
}

func TestDescribeCommand_JSON(t *testing.T) {
	data := testutil.StaffDataset(t)

	stdout, _, err := execute(NewDescribeCommand(jsonOpts()), data, "--sample", "2")
	require.NoError(t, err)

	var resp struct {
		Data struct {
			Rows       int   `json:"n_rows"`
			NumColumns int   `json:"n_cols"`
			SampleRows []any `json:"sample_rows"`
			Columns    []struct {
				Name  string   `json:"name"`
				Dtype string   `json:"dtype"`
				Mean  *float64 `json:"mean"`
			} `json:"columns"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, 4, resp.Data.Rows)
	assert.Equal(t, 5, resp.Data.NumColumns)
	assert.Len(t, resp.Data.SampleRows, 2)
	require.Len(t, resp.Data.Columns, 5)
	assert.Equal(t, "Age", resp.Data.Columns[3].Name)
	assert.Equal(t, "int64", resp.Data.Columns[3].Dtype)
	require.NotNil(t, resp.Data.Columns[3].Mean)
	assert.InDelta(t, 40, *resp.Data.Columns[3].Mean, 1e-9)
	assert.Nil(t, resp.Data.Columns[1].Mean)
}

func TestDescribeCommand_CSV(t *testing.T) {
	data := testutil.StaffDataset(t)

	stdout, _, err := execute(NewDescribeCommand(&RootOptions{Format: "csv"}), data)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "column,dtype,missing,mean,median,std,min,max,unique,top", lines[0])
	assert.Equal(t, "Department,object,0,,,,,,3,\"Sales, Marketing, Ops\"", lines[3])
	assert.Equal(t, "Age,int64,0,40,40,12.91,25,55,,", lines[4])
}

func TestLintCommand(t *testing.T) {
	stdout, _, err := execute(NewLintCommand(textOpts()), "--spec", `{"Department": "sales", "Age": {"$gt": "mean"}}`)
	require.NoError(t, err)
	assert.Equal(t, "✓ Specification is clean\n", stdout)
}

func TestLintCommand_AgainstDataset(t *testing.T) {
	data := testutil.StaffDataset(t)

	stdout, _, err := execute(NewLintCommand(textOpts()), "--spec", `{"Agee": "x"}`, "--dataset", data)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, `✗ Agee: column "Agee" not found in dataset (semantic)`)
}

func TestLintCommand_JSON(t *testing.T) {
	stdout, _, err := execute(NewLintCommand(jsonOpts()), "--spec", `{"Age": {"between": "soon"}}`)
	require.Error(t, err)

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string `json:"code"`
			Details []struct {
				Field  string `json:"field"`
				Source string `json:"source"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeLint, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Details)
}

func TestLintCommand_MalformedSpec(t *testing.T) {
	_, stderr, err := execute(NewLintCommand(textOpts()), "--spec", `{"Age": `)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "Error [E003]")
}

func TestHistoryCommand_Empty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	stdout, _, err := execute(NewHistoryCommand(textOpts()), "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No resolutions recorded.\n", stdout)
}

func TestHistoryCommand_NeedsDatabase(t *testing.T) {
	_, stderr, err := execute(NewHistoryCommand(textOpts()))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "Error [E002]")
}

func TestHistoryCommand_CSVAndSpecHash(t *testing.T) {
	data := testutil.StaffDataset(t)
	db := filepath.Join(t.TempDir(), "history.db")

	for _, spec := range []string{`{"Department": "sales"}`, `{"Age": {"gt": 30}}`, `{"Department": "sales"}`} {
		_, _, err := execute(NewResolveCommand(textOpts()), data, "--spec", spec, "--history-db", db)
		require.NoError(t, err)
	}

	stdout, _, err := execute(NewHistoryCommand(&RootOptions{Format: "csv"}), "--db", db, "--limit", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "seq,id,dataset,spec_hash,rows_in,rows_out,warnings", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "3,"))
	assert.True(t, strings.HasPrefix(lines[2], "2,"))

	stdout, _, err = execute(NewResolveCommand(jsonOpts()), data, "--spec", `{"Department": "sales"}`)
	require.NoError(t, err)
	var resp resolveResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))

	stdout, _, err = execute(NewHistoryCommand(&RootOptions{Format: "csv"}), "--db", db, "--spec-hash", resp.Data.SpecHash)
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "1,"))
	assert.True(t, strings.HasPrefix(lines[2], "3,"))
}

func shopDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range []string{
		`CREATE TABLE products (sku TEXT, price REAL)`,
		`CREATE TABLE customers (id INTEGER, name TEXT)`,
		`INSERT INTO products VALUES ('a-1', 9.5), ('b-2', 12.0)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func TestDescribeCommand_ListsSQLiteTables(t *testing.T) {
	path := shopDatabase(t)

	stdout, _, err := execute(NewDescribeCommand(textOpts()), path)
	require.NoError(t, err)
	assert.Equal(t, "Tables in "+path+" (pick one with --table):\n  customers\n  products\n", stdout)

	stdout, _, err = execute(NewDescribeCommand(jsonOpts()), path)
	require.NoError(t, err)
	var resp struct {
		Data TablesResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, []string{"customers", "products"}, resp.Data.Tables)

	stdout, _, err = execute(NewDescribeCommand(&RootOptions{Format: "csv"}), path)
	require.NoError(t, err)
	assert.Equal(t, "table\ncustomers\nproducts\n", stdout)
}

func TestDescribeCommand_SQLiteTable(t *testing.T) {
	path := shopDatabase(t)

	stdout, _, err := execute(NewDescribeCommand(textOpts()), path, "--table", "products")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "**Dataset Overview**: 2 rows, 2 columns"))
}

func TestResolveCommand_InfiniteCellsAreMissing(t *testing.T) {
	data := writeTemp(t, "scores.csv", "Name,Score\nAnn,inf\nBob,12.5\nCid,-Infinity\n")

	stdout, _, err := execute(NewResolveCommand(jsonOpts()), data, "--spec", `{}`)
	require.NoError(t, err)

	var resp resolveResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.Rows, 3)
	assert.Nil(t, resp.Data.Rows[0]["Score"])
	assert.Equal(t, 12.5, resp.Data.Rows[1]["Score"])
	assert.Nil(t, resp.Data.Rows[2]["Score"])
}

func TestResolveCommand_VerboseNamesSpecColumns(t *testing.T) {
	data := testutil.StaffDataset(t)
	opts := textOpts()
	opts.Verbose = true

	_, stderr, err := execute(NewResolveCommand(opts), data, "--spec", `{"Department": "sales", "Salary": {"gt": 1, "lt": 90000}}`)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Specification: 3 entries on columns [Department, Salary]")
}
