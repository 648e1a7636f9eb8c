package telemetry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/raceng/strategy-engine-go/log"
	"github.com/raceng/strategy-engine-go/pkg/model"
)

// FrameCache memoizes resampled telemetry frames on disk, keyed by
// (track, race, lap). Source files are immutable, so entries are never
// invalidated automatically. Writes go to a temp file followed by an
// atomic rename; concurrent readers never observe a partial file.
type FrameCache struct {
	dir string
	l   *log.Logger
}

// NewFrameCache creates the cache directory if needed.
func NewFrameCache(dir string) (*FrameCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &FrameCache{dir: dir, l: log.Default().Named("telemetry.cache")}, nil
}

func (c *FrameCache) entryPath(track string, race, lap int) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s_R%d_lap%d.csv", track, race, lap))
}

// Get loads a cached frame. ok=false means cache miss; corrupt entries
// count as misses and are recomputed by the caller.
func (c *FrameCache) Get(track string, race, lap int) (*model.TelemetryFrame, bool) {
	f, err := os.Open(c.entryPath(track, race, lap))
	if err != nil {
		return nil, false
	}
	defer f.Close()
	frame, err := decodeFrame(f, track, race, lap)
	if err != nil {
		c.l.Warn("discarding corrupt cache entry",
			log.String("track", track), log.Int("race", race), log.Int("lap", lap),
			log.ErrorField(err))
		return nil, false
	}
	return frame, true
}

// Put stores a frame. The write is atomic with respect to Get.
func (c *FrameCache) Put(frame *model.TelemetryFrame) error {
	tmp, err := os.CreateTemp(c.dir, "frame-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := encodeFrame(tmp, frame); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.entryPath(frame.Track, frame.Race, frame.Lap))
}

// Invalidate removes a cache entry. Only needed when a source file was
// replaced, which the cache otherwise assumes never happens.
func (c *FrameCache) Invalidate(track string, race, lap int) {
	_ = os.Remove(c.entryPath(track, race, lap))
}

// frame CSV layout: timestamp, vehicle_id, lap_progress, then the
// union of semantic fields in sorted order. Field order and float
// formatting are deterministic so warm-cache reads reproduce the
// cold-cache computation byte for byte.
func encodeFrame(w io.Writer, frame *model.TelemetryFrame) error {
	fields := frameFields(frame)
	cw := csv.NewWriter(w)
	header := append([]string{"timestamp", "vehicle_id", "lap_progress"}, fields...)
	if err := cw.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(header))
	for i := range frame.Rows {
		row := &frame.Rows[i]
		rec[0] = formatFloat(row.Timestamp)
		rec[1] = row.VehicleID
		rec[2] = formatFloat(row.LapProgress)
		for j, f := range fields {
			if v, ok := row.Values[f]; ok {
				rec[3+j] = formatFloat(v)
			} else {
				rec[3+j] = ""
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func decodeFrame(r io.Reader, track string, race, lap int) (*model.TelemetryFrame, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, err
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("short header")
	}
	fields := header[3:]
	frame := &model.TelemetryFrame{Track: track, Race: race, Lap: lap}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := model.TelemetryRow{VehicleID: rec[1], Values: make(map[string]float64)}
		if row.Timestamp, err = strconv.ParseFloat(rec[0], 64); err != nil {
			return nil, err
		}
		if row.LapProgress, err = strconv.ParseFloat(rec[2], 64); err != nil {
			return nil, err
		}
		for j, f := range fields {
			if rec[3+j] == "" {
				continue
			}
			v, err := strconv.ParseFloat(rec[3+j], 64)
			if err != nil {
				return nil, err
			}
			row.Values[f] = v
		}
		frame.Rows = append(frame.Rows, row)
	}
	return frame, nil
}

func frameFields(frame *model.TelemetryFrame) []string {
	seen := make(map[string]struct{})
	for i := range frame.Rows {
		for f := range frame.Rows[i].Values {
			seen[f] = struct{}{}
		}
	}
	fields := make([]string, 0, len(seen))
	for f := range seen {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
