package writers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"negmdf/domain/compound"
	"negmdf/domain/core"
	"negmdf/domain/geometry"
	"negmdf/domain/ion"
	"negmdf/domain/screening"
)

func fixtureResult() *screening.Result {
	a := ion.Observation{ID: "a", RetentionTime: 3.21, ObservedMass: 412.9664, NominalMass: 412, MassDefect: 0.9664}
	b := ion.Observation{ID: "b", RetentionTime: 5.5, ObservedMass: 414.97, NominalMass: 414, MassDefect: 0.97}
	matches := []screening.Match{
		{Observation: a, Placement: geometry.Inside},
		{Observation: b, Placement: geometry.NearEdge},
	}
	return &screening.Result{
		Source:    "ions.csv",
		Tolerance: 0.02,
		Ions:      3,
		Outcomes: []screening.Outcome{
			{
				Compound: compound.Definition{Name: "PFCA", BaseMass: 412.9664, Parity: compound.Even},
				Matches:  matches,
				Vertices: 4,
				Summary:  screening.Summarize(matches),
			},
			{
				Compound: compound.Definition{Name: "PFCA", BaseMass: 300, Parity: compound.Odd},
				Matches:  []screening.Match{},
				Vertices: 3,
			},
			{
				Compound: compound.Definition{Name: "Line", BaseMass: 100, Parity: compound.Even},
				Err:      core.NewDegenerateRegionError(2, "need at least 3 distinct points"),
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write("csv", &buf, fixtureResult()))

	want := strings.Join([]string{
		"PFCA",
		"id,rt,mz,Integer,decimal",
		"a,3.21,412.9664,412,0.9664",
		"b,5.5,414.97,414,0.97",
		"PFCA",
		"id,rt,mz,Integer,decimal",
		"Line",
		`error,"degenerate feasible region: 2 points, need at least 3 distinct points"`,
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write("jsonl", &buf, fixtureResult()))

	var records []map[string]interface{}
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var rec map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.Len(t, records, 3)

	assert.Equal(t, "matched", records[0]["status"])
	assert.Equal(t, "ions.csv", records[0]["source"])
	matches := records[0]["matches"].([]interface{})
	require.Len(t, matches, 2)
	first := matches[0].(map[string]interface{})
	assert.Equal(t, "a", first["id"])
	assert.Equal(t, "inside", first["placement"])
	assert.Equal(t, float64(412), first["integer"])
	assert.Equal(t, "near_edge", matches[1].(map[string]interface{})["placement"])

	assert.Equal(t, "empty", records[1]["status"])
	assert.Equal(t, []interface{}{}, records[1]["matches"])
	assert.Equal(t, float64(1), records[1]["parity"])

	assert.Equal(t, "failed", records[2]["status"])
	assert.Contains(t, records[2]["error"], "degenerate feasible region")
	assert.Equal(t, []interface{}{}, records[2]["matches"])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write("xlsx", &buf, fixtureResult()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"PFCA", "PFCA (2)", "Line"}, f.GetSheetList())

	rows, err := f.GetRows("PFCA")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"PFCA"},
		{"id", "rt", "mz", "Integer", "decimal"},
		{"a", "3.21", "412.9664", "412", "0.9664"},
		{"b", "5.5", "414.97", "414", "0.97"},
	}, rows)

	rows, err = f.GetRows("Line")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ErrorLabel, rows[1][0])
}

func TestWriteXLSXEmptyResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, &screening.Result{}))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{defaultSheet}, f.GetSheetList())
}

func TestUniqueSheetName(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "a_b_c", uniqueSheetName("a/b:c", used))
	assert.Equal(t, "A_B_C (2)", uniqueSheetName("A/B:C", used))
	assert.Equal(t, "compound", uniqueSheetName(" '' ", used))

	long := strings.Repeat("x", 40)
	first := uniqueSheetName(long, used)
	second := uniqueSheetName(long, used)
	assert.Equal(t, strings.Repeat("x", maxSheetName), first)
	assert.Equal(t, strings.Repeat("x", maxSheetName-4)+" (2)", second)
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"csv", "jsonl", "xlsx"}, Formats())

	ext, err := Extension("jsonl")
	require.NoError(t, err)
	assert.Equal(t, "jsonl", ext)

	err = Write("parquet", io.Discard, fixtureResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestOutputPath(t *testing.T) {
	path, err := OutputPath("out", "data/sample_01.csv", "xlsx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "sample_01_screened.xlsx"), path)

	_, err = OutputPath("out", "x.csv", "nope")
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.csv")
	require.NoError(t, WriteFile("csv", path, fixtureResult()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "PFCA\nid,rt,mz,Integer,decimal\n"))

	assert.Error(t, WriteFile("nope", filepath.Join(t.TempDir(), "x"), fixtureResult()))
}

func TestIsBrokenPipe(t *testing.T) {
	assert.True(t, IsBrokenPipe(syscall.EPIPE))
	assert.True(t, IsBrokenPipe(fmt.Errorf("write: %w", io.ErrClosedPipe)))
	assert.False(t, IsBrokenPipe(nil))
	assert.False(t, IsBrokenPipe(io.EOF))
}
