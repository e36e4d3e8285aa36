package cmd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/etnz/accounts"
	"github.com/etnz/accounts/date"
	"github.com/shopspring/decimal"
)

// ReadCSV decodes a bank export: one record per line with the columns
// date, amount and optionally contractor, description and key.
// A first line that does not start with a date is a header and is skipped.
func ReadCSV(r io.Reader) ([]accounts.ImportRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	var records []accounts.ImportRecord
	for line := 1; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("line %d: want at least a date and an amount, got %d columns", line, len(row))
		}
		day, err := date.Parse(strings.TrimSpace(row[0]))
		if err != nil {
			if line == 1 {
				continue // header
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		amount, err := parseAmount(row[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec := accounts.ImportRecord{PostingDate: day.Time(), ValueChange: amount}
		if len(row) > 2 {
			rec.ContractorDetails = strings.TrimSpace(row[2])
		}
		if len(row) > 3 {
			rec.Description = strings.TrimSpace(row[3])
		}
		if len(row) > 4 {
			rec.Key = strings.TrimSpace(row[4])
		}
		records = append(records, rec)
	}
}

// parseAmount accepts both decimal points and decimal commas, with optional
// digit grouping ("1.234,56", "1,234.56", "1 234,56"). When both separators
// are present the last one is the decimal separator. A single separator
// followed by exactly three digits ("1,234") could be either and is rejected.
func parseAmount(s string) (decimal.Decimal, error) {
	raw := s
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	invalid := func() (decimal.Decimal, error) {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}

	dots, commas := strings.Count(s, "."), strings.Count(s, ",")
	var decimalSep, groupSep string
	switch {
	case dots > 0 && commas > 0:
		decimalSep, groupSep = ".", ","
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			decimalSep, groupSep = ",", "."
		}
		if strings.Count(s, decimalSep) > 1 {
			return invalid()
		}
	case dots > 1:
		groupSep = "."
	case commas > 1:
		groupSep = ","
	case dots == 1 || commas == 1:
		decimalSep = "."
		if commas == 1 {
			decimalSep = ","
		}
		intPart, frac, _ := strings.Cut(s, decimalSep)
		intPart = strings.TrimLeft(intPart, "+-")
		if len(frac) == 3 && intPart != "" && intPart != "0" {
			return decimal.Zero, fmt.Errorf("ambiguous amount %q: use a decimal separator with two digits or none", raw)
		}
	}

	intPart, frac, hasFrac := s, "", false
	if decimalSep != "" {
		intPart, frac, hasFrac = strings.Cut(s, decimalSep)
	}
	if groupSep != "" {
		groups := strings.Split(strings.TrimLeft(intPart, "+-"), groupSep)
		for i, g := range groups {
			if len(g) != 3 && (i > 0 || len(g) == 0 || len(g) > 3) {
				return invalid()
			}
		}
		intPart = strings.ReplaceAll(intPart, groupSep, "")
	}
	if hasFrac {
		intPart += "." + frac
	}
	d, err := decimal.NewFromString(intPart)
	if err != nil {
		return invalid()
	}
	return d, nil
}

// readCSVFile reads a bank export file.
func readCSVFile(path string) ([]accounts.ImportRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
