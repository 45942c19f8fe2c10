// Package export writes saved audiences and compiled expressions to files
// other tools can read.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rebeliceyang/lazyaudience/internal/expr"
	"github.com/rebeliceyang/lazyaudience/internal/filter"
	"github.com/rebeliceyang/lazyaudience/internal/library"
)

const timeLayout = "2006-01-02 15:04:05"

// record is the exported shape of an audience. The expression is embedded as
// JSON rather than as the string the library stores.
type record struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Questions   []string        `json:"questions"`
	Expression  json.RawMessage `json:"expression"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	UsageCount  int             `json:"usage_count"`
}

// ExportToCSV exports audiences to a CSV file
func ExportToCSV(audiences []library.Audience, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)

	header := []string{"Name", "Description", "Questions", "Summary", "Expression", "Created", "Updated", "Last Used", "Usage Count"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, a := range audiences {
		summary := ""
		if e, err := a.Compiled(); err == nil {
			summary = filter.Describe(e)
		}

		lastUsed := ""
		if !a.LastUsed.IsZero() {
			lastUsed = a.LastUsed.Format(timeLayout)
		}

		row := []string{
			a.Name,
			a.Description,
			strings.Join(a.QuestionIDs(), ", "),
			summary,
			a.Expression,
			a.CreatedAt.Format(timeLayout),
			a.UpdatedAt.Format(timeLayout),
			lastUsed,
			strconv.Itoa(a.UsageCount),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// ExportToJSON exports audiences to a JSON file
func ExportToJSON(audiences []library.Audience, path string) error {
	records := make([]record, 0, len(audiences))
	for _, a := range audiences {
		if _, err := a.Compiled(); err != nil {
			return err
		}
		records = append(records, record{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Questions:   a.QuestionIDs(),
			Expression:  json.RawMessage(a.Expression),
			CreatedAt:   a.CreatedAt,
			UpdatedAt:   a.UpdatedAt,
			UsageCount:  a.UsageCount,
		})
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal audiences to JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	return nil
}

// WriteExpression writes e as indented wire JSON followed by a newline
func WriteExpression(w io.Writer, e expr.Expression) error {
	data, err := expr.MarshalIndent(e, "  ")
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write expression: %w", err)
	}
	return nil
}
