// package formatter encodes and decodes the line-oriented snapshot and report files, and exports reports as CSV or JSON
package formatter

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/desertthunder/plbackup/internal/models"
	"github.com/desertthunder/plbackup/internal/shared"
)

const (
	labelSep = ". "
	oldMark  = "Old: "
	newMark  = ". New: "

	maxLineSize = 1024 * 1024
)

// EncodeSnapshot writes seq as "<i+1>. <title>" lines.
func EncodeSnapshot(w io.Writer, seq models.TitleSequence) error {
	bw := bufio.NewWriter(w)
	for i, title := range seq {
		if _, err := fmt.Fprintf(bw, "%d. %s\n", i+1, title); err != nil {
			return fmt.Errorf("failed to write snapshot line %d: %w", i+1, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return nil
}

// DecodeSnapshot reads "<label>. <title>" lines, splitting each at the first ". ".
//
// The numeric label is discarded without being checked against the line's position.
func DecodeSnapshot(r io.Reader) (models.TitleSequence, error) {
	seq := models.TitleSequence{}
	err := scanLines(r, func(n int, line string) error {
		_, title, ok := strings.Cut(line, labelSep)
		if !ok {
			return fmt.Errorf("%w: line %d has no %q separator: %q", shared.ErrParse, n, labelSep, line)
		}
		seq = append(seq, title)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seq, nil
}

// EncodeDiff writes each record as "<pos>. Old: <old>. New: <new>".
func EncodeDiff(w io.Writer, report models.DiffReport) error {
	bw := bufio.NewWriter(w)
	for _, rec := range report {
		if _, err := fmt.Fprintf(bw, "%d. Old: %s. New: %s\n", rec.Position, rec.Old, rec.New); err != nil {
			return fmt.Errorf("failed to write diff record %d: %w", rec.Position, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush diff report: %w", err)
	}
	return nil
}

// DecodeDiff parses lines written by [EncodeDiff].
//
// An old title that itself contains ". New: " is split at its first occurrence.
func DecodeDiff(r io.Reader) (models.DiffReport, error) {
	report := models.DiffReport{}
	err := scanLines(r, func(n int, line string) error {
		pos, rest, err := splitLabel(n, line)
		if err != nil {
			return err
		}
		rest, ok := strings.CutPrefix(rest, oldMark)
		if !ok {
			return fmt.Errorf("%w: line %d missing %q: %q", shared.ErrParse, n, oldMark, line)
		}
		oldTitle, newTitle, ok := strings.Cut(rest, newMark)
		if !ok {
			return fmt.Errorf("%w: line %d missing %q: %q", shared.ErrParse, n, newMark, line)
		}
		report = append(report, models.DiffRecord{Position: pos, Old: oldTitle, New: newTitle})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// EncodeMissing writes each record as "<pos>. <title>".
func EncodeMissing(w io.Writer, report models.MissingReport) error {
	bw := bufio.NewWriter(w)
	for _, rec := range report {
		if _, err := fmt.Fprintf(bw, "%d. %s\n", rec.Position, rec.Title); err != nil {
			return fmt.Errorf("failed to write missing record %d: %w", rec.Position, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush missing report: %w", err)
	}
	return nil
}

// DecodeMissing parses lines written by [EncodeMissing], keeping their positions.
func DecodeMissing(r io.Reader) (models.MissingReport, error) {
	report := models.MissingReport{}
	err := scanLines(r, func(n int, line string) error {
		pos, title, err := splitLabel(n, line)
		if err != nil {
			return err
		}
		report = append(report, models.MissingRecord{Position: pos, Title: title})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// DiffToCSV converts a diff report to CSV with columns: Position, Old, New
func DiffToCSV(report models.DiffReport) ([]byte, error) {
	records := make([][]string, 0, len(report))
	for _, rec := range report {
		records = append(records, []string{strconv.Itoa(rec.Position), rec.Old, rec.New})
	}
	return toCSV([]string{"Position", "Old", "New"}, records)
}

// MissingToCSV converts a missing report to CSV with columns: Position, Title
func MissingToCSV(report models.MissingReport) ([]byte, error) {
	records := make([][]string, 0, len(report))
	for _, rec := range report {
		records = append(records, []string{strconv.Itoa(rec.Position), rec.Title})
	}
	return toCSV([]string{"Position", "Title"}, records)
}

// MarshalJSON marshals v, indented when pretty is set.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return data, nil
}

func toCSV(headers []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write CSV records: %w", err)
	}

	return buf.Bytes(), nil
}

// splitLabel splits "<int>. <rest>" and parses the label.
func splitLabel(n int, line string) (int, string, error) {
	label, rest, ok := strings.Cut(line, labelSep)
	if !ok {
		return 0, "", fmt.Errorf("%w: line %d has no %q separator: %q", shared.ErrParse, n, labelSep, line)
	}
	pos, err := strconv.Atoi(label)
	if err != nil {
		return 0, "", fmt.Errorf("%w: line %d has non-numeric label %q", shared.ErrParse, n, label)
	}
	return pos, rest, nil
}

func scanLines(r io.Reader, fn func(n int, line string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if err := fn(n, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: failed to read lines: %v", shared.ErrIO, err)
	}
	return nil
}
