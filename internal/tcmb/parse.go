package tcmb

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The central bank publishes numbers with Turkish formatting: comma as the
// decimal separator and a bare "-" for cells with no value.

// parseDecimal converts a Turkish-formatted decimal cell to a float pointer.
// "-" and empty cells return nil without error.
func parseDecimal(cell string) (*float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell == "-" {
		return nil, nil
	}

	normalized := strings.ReplaceAll(cell, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")

	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return nil, fmt.Errorf("parse decimal %q: %w", cell, err)
	}
	return &v, nil
}

// parseDate converts a DD.MM.YY or DD.MM.YYYY cell to a time pointer.
// "-" and empty cells return nil without error.
func parseDate(cell string, loc *time.Location) (*time.Time, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell == "-" {
		return nil, nil
	}

	for _, layout := range []string{"02.01.2006", "02.01.06"} {
		if t, err := time.ParseInLocation(layout, cell, loc); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("parse date %q: unrecognized format", cell)
}
