// Package loader materializes the canonical in-memory lap table from
// the timing export. File-format handling beyond that table is out of
// scope; the telemetry stream is scanned by the resampler itself.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/raceng/strategy-engine-go/log"
	"github.com/raceng/strategy-engine-go/pkg/model"
	"github.com/raceng/strategy-engine-go/pkg/timing"
)

// required columns of the lap analysis export
var lapColumns = []string{
	"NUMBER", "LAP_NUMBER", "LAP_TIME",
	"S1_SECONDS", "S2_SECONDS", "S3_SECONDS",
	"KPH", "TOP_SPEED",
}

// ReadLapRecords reads the lap-indexed analysis CSV. A missing column
// is a contract error and fails hard; a malformed value in a single
// row is a data-quality issue and only affects that row (unparseable
// lap times leave the record without a time, sentinel lap numbers drop
// the row).
func ReadLapRecords(path string) ([]model.LapRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseLapRecords(f)
}

// ParseLapRecords is ReadLapRecords over an already-open stream.
func ParseLapRecords(r io.Reader) ([]model.LapRecord, error) {
	l := log.Default().Named("loader")
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}
	for _, name := range lapColumns {
		if _, ok := colIdx[name]; !ok {
			return nil, fmt.Errorf("lap data: missing required column %q", name)
		}
	}

	ret := make([]model.LapRecord, 0)
	dropped := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// skip the malformed row, keep scanning
			dropped++
			continue
		}
		get := func(name string) string { return strings.TrimSpace(rec[colIdx[name]]) }

		rawLap, err := strconv.Atoi(get("LAP_NUMBER"))
		if err != nil {
			dropped++
			continue
		}
		lapNo, ok := timing.NormalizeLapNumber(rawLap)
		if !ok {
			dropped++
			continue
		}

		lr := model.LapRecord{
			VehicleID: get("NUMBER"),
			LapNo:     lapNo,
			S1:        parseFloat(get("S1_SECONDS")),
			S2:        parseFloat(get("S2_SECONDS")),
			S3:        parseFloat(get("S3_SECONDS")),
			AvgSpeed:  parseFloat(get("KPH")),
			TopSpeed:  parseFloat(get("TOP_SPEED")),
		}
		if secs, ok := timing.ParseLapTime(get("LAP_TIME")); ok {
			lr.LapTime = secs
			lr.HasTime = true
		}
		ret = append(ret, lr)
	}
	if dropped > 0 {
		l.Debug("dropped invalid lap rows", log.Int("count", dropped))
	}
	return ret, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
