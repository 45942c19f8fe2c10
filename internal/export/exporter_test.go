package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rebeliceyang/lazyaudience/internal/expr"
	"github.com/rebeliceyang/lazyaudience/internal/library"
)

func testAudiences() []library.Audience {
	return []library.Audience{
		{
			ID:          "test-1",
			Name:        "Young drivers",
			Description: "Drivers, \"new\" ones",
			Expression:  `{"and":[{"question":{"question_id":"age","datapoint_ids":["18-24"]}},{"question":{"question_id":"licence","datapoint_ids":["yes"]}}]}`,
			CreatedAt:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC),
			LastUsed:    time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC),
			UsageCount:  5,
		},
		{
			ID:         "test-2",
			Name:       "Pet owners",
			Expression: `{"question":{"question_id":"pets","datapoint_ids":["dog","cat"]}}`,
			CreatedAt:  time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC),
			UpdatedAt:  time.Date(2024, 1, 2, 13, 0, 0, 0, time.UTC),
			UsageCount: 2,
		},
	}
}

func TestExportToCSV(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "test.csv")

	if err := ExportToCSV(testAudiences(), csvPath); err != nil {
		t.Fatalf("ExportToCSV failed: %v", err)
	}

	file, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("Failed to open CSV: %v", err)
	}
	defer func() { _ = file.Close() }()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}

	if len(records) != 3 { // header + 2 rows
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	expectedHeader := []string{"Name", "Description", "Questions", "Summary", "Expression", "Created", "Updated", "Last Used", "Usage Count"}
	if !slicesEqual(records[0], expectedHeader) {
		t.Errorf("Header mismatch.\nExpected: %v\nGot: %v", expectedHeader, records[0])
	}

	row1 := records[1]
	if row1[1] != "Drivers, \"new\" ones" {
		t.Errorf("Description not preserved: %q", row1[1])
	}
	if row1[2] != "age, licence" {
		t.Errorf("Expected questions 'age, licence', got '%s'", row1[2])
	}
	if row1[3] != "age IN (18-24) AND licence IN (yes)" {
		t.Errorf("Unexpected summary '%s'", row1[3])
	}
	if row1[8] != "5" {
		t.Errorf("Expected usage count '5', got '%s'", row1[8])
	}
	if records[2][7] != "" {
		t.Errorf("Expected empty last used, got '%s'", records[2][7])
	}
}

func TestExportToJSON(t *testing.T) {
	jsonPath := filepath.Join(t.TempDir(), "test.json")

	if err := ExportToJSON(testAudiences(), jsonPath); err != nil {
		t.Fatalf("ExportToJSON failed: %v", err)
	}

	info, err := os.Stat(jsonPath)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("Expected file permissions 0644, got %o", info.Mode().Perm())
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("Failed to read JSON: %v", err)
	}

	var parsed []struct {
		Name       string          `json:"name"`
		Questions  []string        `json:"questions"`
		Expression json.RawMessage `json:"expression"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("Expected 2 audiences, got %d", len(parsed))
	}

	e, err := expr.Parse(parsed[1].Expression)
	if err != nil {
		t.Fatalf("Exported expression does not parse: %v", err)
	}
	if !expr.Equal(e, expr.NewQuestion("pets", "dog", "cat")) {
		t.Errorf("Unexpected expression %v", e)
	}

	if !strings.Contains(string(data), "\n  ") {
		t.Error("JSON should be indented")
	}
}

func TestExportToJSON_RejectsCorruptExpression(t *testing.T) {
	audiences := []library.Audience{{ID: "x", Name: "broken", Expression: `{"xor":[]}`}}

	err := ExportToJSON(audiences, filepath.Join(t.TempDir(), "broken.json"))
	if !errors.Is(err, expr.ErrInvalidExpression) {
		t.Errorf("Expected ErrInvalidExpression, got %v", err)
	}
}

func TestExportEmptyAudiences(t *testing.T) {
	tmpDir := t.TempDir()

	csvPath := filepath.Join(tmpDir, "empty.csv")
	if err := ExportToCSV([]library.Audience{}, csvPath); err != nil {
		t.Fatalf("ExportToCSV with empty list failed: %v", err)
	}

	file, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("Failed to open CSV: %v", err)
	}
	defer func() { _ = file.Close() }()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) != 1 { // only header
		t.Errorf("Expected 1 record (header), got %d", len(records))
	}

	jsonPath := filepath.Join(tmpDir, "empty.json")
	if err := ExportToJSON(nil, jsonPath); err != nil {
		t.Fatalf("ExportToJSON with empty list failed: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("Failed to read JSON: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("Expected empty array, got %s", data)
	}
}

func TestWriteExpression(t *testing.T) {
	var buf bytes.Buffer
	e := expr.NewNot(expr.NewQuestion("q1", "a"))

	if err := WriteExpression(&buf, e); err != nil {
		t.Fatalf("WriteExpression failed: %v", err)
	}

	out := buf.String()
	if !strings.HasSuffix(out, "}\n") {
		t.Errorf("Expected trailing newline, got %q", out)
	}
	parsed, err := expr.Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Output does not parse: %v", err)
	}
	if !expr.Equal(parsed, e) {
		t.Errorf("Expected %v, got %v", e, parsed)
	}

	if err := WriteExpression(&buf, nil); err == nil {
		t.Error("Expected an error for a nil expression")
	}
}

func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
