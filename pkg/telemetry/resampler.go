// Package telemetry turns the long-format high-frequency sensor stream
// into compact per-lap wide frames. The stream is scanned in bounded
// chunks and never loaded whole; results are memoized in a FrameCache.
package telemetry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/raceng/strategy-engine-go/log"
	"github.com/raceng/strategy-engine-go/pkg/model"
	"github.com/raceng/strategy-engine-go/pkg/timing"
)

const (
	// DefaultStride keeps every 50th sample (~20Hz from a 1kHz log).
	DefaultStride = 50
	// defaultChunkSize is the number of stream rows per scan chunk.
	defaultChunkSize = 500_000
	// defaultScanGrace is how many chunks are consumed past the first
	// lap match before the scan stops. Lap data is approximately
	// contiguous in file order; this is an optimization, not a
	// guarantee, and late stragglers beyond the window are dropped.
	defaultScanGrace = 3
)

// required columns of the long-format telemetry stream
var streamColumns = []string{
	"timestamp", "vehicle_id", "lap", "telemetry_name", "telemetry_value",
}

type Resampler struct {
	channels  *ChannelMap
	cache     *FrameCache
	chunkSize int
	scanGrace int
	l         *log.Logger
}

type ResamplerOption func(r *Resampler)

// WithCache attaches a frame cache. Without one every call rescans the
// source file.
func WithCache(c *FrameCache) ResamplerOption {
	return func(r *Resampler) { r.cache = c }
}

func WithChannelMap(m *ChannelMap) ResamplerOption {
	return func(r *Resampler) { r.channels = m }
}

func WithChunkSize(n int) ResamplerOption {
	return func(r *Resampler) { r.chunkSize = n }
}

func WithScanGrace(chunks int) ResamplerOption {
	return func(r *Resampler) { r.scanGrace = chunks }
}

func NewResampler(opts ...ResamplerOption) *Resampler {
	r := &Resampler{
		channels:  DefaultChannelMap(),
		chunkSize: defaultChunkSize,
		scanGrace: defaultScanGrace,
		l:         log.Default().Named("telemetry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ProcessLap materializes the wide frame for one lap of the stream at
// path. An empty frame is a normal "no data for this lap" outcome.
// Cache hits bypass the source scan entirely.
func (r *Resampler) ProcessLap(
	path, track string,
	race, lap, stride int,
) (*model.TelemetryFrame, error) {
	if stride <= 0 {
		stride = DefaultStride
	}
	if r.cache != nil {
		if frame, ok := r.cache.Get(track, race, lap); ok {
			r.l.Debug("frame loaded from cache",
				log.String("track", track), log.Int("race", race), log.Int("lap", lap))
			return frame, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	frame, err := r.scan(f, track, race, lap, stride)
	if err != nil {
		return nil, err
	}
	if frame.Empty() {
		r.l.Info("no telemetry rows for lap",
			log.String("track", track), log.Int("race", race), log.Int("lap", lap))
		return frame, nil
	}
	if r.cache != nil {
		if err := r.cache.Put(frame); err != nil {
			r.l.Warn("caching frame failed", log.ErrorField(err))
		}
	}
	return frame, nil
}

type rowKey struct {
	ts  float64
	veh string
}

//nolint:gocognit // sequential scan loop
func (r *Resampler) scan(
	src io.Reader,
	track string,
	race, lap, stride int,
) (*model.TelemetryFrame, error) {
	cr := csv.NewReader(src)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading stream header: %w", err)
	}
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}
	for _, name := range streamColumns {
		if _, ok := colIdx[name]; !ok {
			return nil, fmt.Errorf("telemetry stream: missing required column %q", name)
		}
	}

	rows := make(map[rowKey]*model.TelemetryRow)
	order := make([]rowKey, 0)
	rowsProcessed := 0
	rowsAtFirstMatch := -1
	matched := 0

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// single bad row, skip in place
			continue
		}
		rowsProcessed++
		// assume lap data is contiguous: stop a few chunks after the
		// first match instead of scanning to EOF
		if rowsAtFirstMatch >= 0 &&
			rowsProcessed-rowsAtFirstMatch > r.chunkSize*r.scanGrace {
			break
		}

		rawLap, err := strconv.Atoi(strings.TrimSpace(rec[colIdx["lap"]]))
		if err != nil {
			continue
		}
		normLap, ok := timing.NormalizeLapNumber(rawLap)
		if !ok || normLap != lap {
			continue
		}
		if rowsAtFirstMatch < 0 {
			rowsAtFirstMatch = rowsProcessed
		}
		matched++
		if (matched-1)%stride != 0 {
			continue
		}

		spec, ok := r.channels.Lookup(strings.TrimSpace(rec[colIdx["telemetry_name"]]))
		if !ok {
			continue
		}
		ts, err := strconv.ParseFloat(strings.TrimSpace(rec[colIdx["timestamp"]]), 64)
		if err != nil {
			continue
		}
		key := rowKey{ts: ts, veh: strings.TrimSpace(rec[colIdx["vehicle_id"]])}
		row, ok := rows[key]
		if !ok {
			row = &model.TelemetryRow{
				Timestamp: ts,
				VehicleID: key.veh,
				Values:    make(map[string]float64),
			}
			rows[key] = row
			order = append(order, key)
		}
		// first wins on duplicate (timestamp, channel) pairs
		if _, exists := row.Values[spec.Field]; !exists {
			row.Values[spec.Field] = spec.Clean(rec[colIdx["telemetry_value"]])
		}
	}
	r.l.Debug("stream scan done",
		log.Int("lap", lap), log.Int("rowsProcessed", rowsProcessed),
		log.Int("matched", matched), log.Int("retained", len(order)))

	frame := &model.TelemetryFrame{Track: track, Race: race, Lap: lap}
	if len(order) == 0 {
		return frame, nil
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].ts != order[j].ts {
			return order[i].ts < order[j].ts
		}
		return order[i].veh < order[j].veh
	})
	frame.Rows = make([]model.TelemetryRow, 0, len(order))
	for i, key := range order {
		row := rows[key]
		if front, ok := row.Values[FieldBrakeFront]; ok {
			if rear, ok := row.Values[FieldBrakeRear]; ok {
				row.Values[FieldBrake] = (front + rear) / 2
			}
		}
		if len(order) > 1 {
			row.LapProgress = float64(i) / float64(len(order)-1)
		}
		frame.Rows = append(frame.Rows, *row)
	}
	return frame, nil
}

// FastestLapFrame resamples the fastest plausible lap found in the lap
// table. The returned lap number is -1 when no valid lap exists.
func (r *Resampler) FastestLapFrame(
	path, track string,
	race int,
	laps []model.LapRecord,
	stride int,
) (*model.TelemetryFrame, int, error) {
	fastest := -1
	best := timing.PlausibleLapCeiling
	for i := range laps {
		if laps[i].HasTime && laps[i].LapTime < best {
			best = laps[i].LapTime
			fastest = laps[i].LapNo
		}
	}
	if fastest < 0 {
		return &model.TelemetryFrame{Track: track, Race: race, Lap: -1}, -1, nil
	}
	r.l.Debug("fastest lap",
		log.Int("lap", fastest), log.Float64("lapTime", best))
	frame, err := r.ProcessLap(path, track, race, fastest, stride)
	if err != nil {
		return nil, fastest, err
	}
	return frame, fastest, nil
}
