package scorelog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

var csvHeader = []string{
	"session_id", "generation", "coordinates",
	"successes", "hard_failures", "soft_failures",
	"objective", "best",
}

// WriteCSV writes the records with a header row.
func WriteCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range records {
		row := []string{
			r.SessionID,
			strconv.Itoa(r.Generation),
			joinInts(r.Coordinates),
			joinInts(r.Successes),
			joinInts(r.HardFailures),
			joinInts(r.SoftFailures),
			strconv.FormatFloat(r.Objective, 'g', -1, 64),
			strconv.FormatBool(r.Best),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveCSV writes the records to a file.
func SaveCSV(filename string, records []Record) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, records)
}

// ReadCSV parses records written by WriteCSV.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(header))
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}
		rec, err := parseCSVRow(row)
		if err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadCSV reads records from a file.
func LoadCSV(filename string) ([]Record, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

func parseCSVRow(row []string) (Record, error) {
	var rec Record
	rec.SessionID = row[0]

	generation, err := strconv.Atoi(row[1])
	if err != nil {
		return rec, fmt.Errorf("generation: %w", err)
	}
	rec.Generation = generation

	if rec.Coordinates, err = splitInts(row[2]); err != nil {
		return rec, fmt.Errorf("coordinates: %w", err)
	}
	if rec.Successes, err = splitInts(row[3]); err != nil {
		return rec, fmt.Errorf("successes: %w", err)
	}
	if rec.HardFailures, err = splitInts(row[4]); err != nil {
		return rec, fmt.Errorf("hard failures: %w", err)
	}
	if rec.SoftFailures, err = splitInts(row[5]); err != nil {
		return rec, fmt.Errorf("soft failures: %w", err)
	}
	if rec.Objective, err = strconv.ParseFloat(row[6], 64); err != nil {
		return rec, fmt.Errorf("objective: %w", err)
	}
	if rec.Best, err = strconv.ParseBool(row[7]); err != nil {
		return rec, fmt.Errorf("best: %w", err)
	}
	return rec, nil
}
