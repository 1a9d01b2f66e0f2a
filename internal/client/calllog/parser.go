// Package calllog turns exported call-log CSV files into entries ready for
// upload, and provides the search and formatting helpers of the call-log
// view.
//
// Columns are positional: phoneNumber, callType, callStart, callEnd,
// durationSeconds, lat, lon, accuracy. The first line is a header and is
// ignored. Missing or unparseable values take their defaults: callType
// "unknown", callStart the import time, durationSeconds 0, the rest absent.
// Rows without a phone number are dropped and counted.
package calllog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nyakeriga/geoforensics-web-ui/internal/client/models"
)

// Mode selects how a line is split into fields.
type Mode int

const (
	// ModeNaive splits on every comma. Quoted fields containing commas are
	// split too; this matches the dashboard's historical import.
	ModeNaive Mode = iota
	// ModeQuoted follows RFC 4180 quoting.
	ModeQuoted
)

const (
	colPhone = iota
	colType
	colStart
	colEnd
	colDuration
	colLat
	colLon
	colAccuracy
)

// Result is the outcome of a parse.
type Result struct {
	Entries []models.CallLogEntry
	// Dropped counts rows skipped for lacking a phone number.
	Dropped int
}

// Parser reads call-log exports. The zero value splits naively and stamps
// missing start times with time.Now.
type Parser struct {
	Mode Mode
	// Now supplies the default callStart; time.Now when nil.
	Now func() time.Time
}

// Parse reads all of r. The first line is taken as a header and skipped,
// as are lines with no content. Each remaining row yields an entry unless
// its phone number is empty, in which case it is counted in
// Result.Dropped. A read error, or malformed quoting in ModeQuoted, aborts
// the parse.
func (p Parser) Parse(r io.Reader) (Result, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	var (
		res Result
		err error
	)
	emit := func(fields []string) {
		if isBlank(fields) {
			return
		}
		entry, ok := buildEntry(fields, now)
		if !ok {
			res.Dropped++
			return
		}
		res.Entries = append(res.Entries, entry)
	}

	switch p.Mode {
	case ModeQuoted:
		err = readQuoted(r, emit)
	default:
		err = readNaive(r, emit)
	}
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func readNaive(r io.Reader, emit func([]string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		emit(strings.Split(strings.TrimRight(sc.Text(), "\r"), ","))
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read call log: %w", err)
	}
	return nil
}

func readQuoted(r io.Reader, emit func([]string)) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read call log: %w", err)
		}
		if header {
			header = false
			continue
		}
		emit(rec)
	}
}

func buildEntry(fields []string, now func() time.Time) (models.CallLogEntry, bool) {
	get := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	phone := get(colPhone)
	if phone == "" {
		return models.CallLogEntry{}, false
	}

	entry := models.CallLogEntry{
		PhoneNumber:      phone,
		CallType:         models.CallUnknown,
		CallStart:        get(colStart),
		DurationSeconds:  intOrZero(get(colDuration)),
		LocationLat:      optFloat(get(colLat)),
		LocationLon:      optFloat(get(colLon)),
		LocationAccuracy: optFloat(get(colAccuracy)),
	}
	if ct := get(colType); ct != "" {
		entry.CallType = models.CallType(ct)
	}
	if entry.CallStart == "" {
		entry.CallStart = now().UTC().Format(time.RFC3339)
	}
	if end := get(colEnd); end != "" {
		entry.CallEnd = &end
	}
	return entry, true
}

func intOrZero(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		n = 0
	}
	return &n
}

func optFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
