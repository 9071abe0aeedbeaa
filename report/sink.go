package report

import (
	"io"
	"slices"
	"strconv"
	"sync"

	"github.com/hupe1980/kdknn/codec"
	"github.com/hupe1980/kdknn/model"
)

// Sink receives results as they are produced.
type Sink interface {
	Emit(r model.Result) error
}

// SweepSink is a Sink that wants to know when a new k value starts.
// The coordinator calls BeginK once per k, from rank 0, before any result
// of that k is emitted by rank 0.
type SweepSink interface {
	Sink
	BeginK(k int) error
}

// Compile-time checks.
var (
	_ Sink      = (*TextSink)(nil)
	_ Sink      = (*JSONSink)(nil)
	_ Sink      = (*MsgPackSink)(nil)
	_ SweepSink = (*PreviewSink)(nil)
	_ Sink      = (*Collector)(nil)
	_ Sink      = discard{}
)

// lineWriter serializes whole lines onto w.
type lineWriter struct {
	mu  sync.Mutex
	w   io.Writer
	buf []byte
}

func (lw *lineWriter) write(fn func(dst []byte) ([]byte, error)) error {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	var err error
	lw.buf, err = fn(lw.buf[:0])
	if err != nil {
		return err
	}
	_, err = lw.w.Write(lw.buf)
	return err
}

// appendIDs appends "id " for every neighbor.
func appendIDs(dst []byte, neighbors []model.Neighbor) []byte {
	for _, n := range neighbors {
		dst = strconv.AppendInt(dst, int64(n.ID), 10)
		dst = append(dst, ' ')
	}
	return dst
}

// AppendText appends the plain text line of r to dst:
//
//	Point <id> nearest neighbors: <id1> <id2> ... <idk>
//
// Every identity is followed by a single space.
func AppendText(dst []byte, r model.Result) []byte {
	dst = append(dst, "Point "...)
	dst = strconv.AppendInt(dst, int64(r.Query.ID), 10)
	dst = append(dst, " nearest neighbors: "...)
	dst = appendIDs(dst, r.Neighbors)
	return append(dst, '\n')
}

// TextSink writes one plain text line per result.
type TextSink struct {
	lw lineWriter
}

// NewTextSink returns a TextSink writing to w.
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{lw: lineWriter{w: w}}
}

// Emit implements Sink.
func (s *TextSink) Emit(r model.Result) error {
	return s.lw.write(func(dst []byte) ([]byte, error) {
		return AppendText(dst, r), nil
	})
}

// Record is the structured form of a result.
type Record struct {
	K         int     `json:"k"`
	Rank      int     `json:"rank"`
	Point     int32   `json:"point"`
	Neighbors []int32 `json:"neighbors"`
}

// NewRecord converts r to its structured form.
func NewRecord(r model.Result) Record {
	return Record{
		K:         r.K,
		Rank:      r.Rank,
		Point:     r.Query.ID,
		Neighbors: model.IDs(r.Neighbors),
	}
}

// JSONSink writes one JSON object per line.
type JSONSink struct {
	lw    lineWriter
	codec codec.Codec
}

// NewJSONSink returns a JSONSink writing to w with c (codec.Default if nil).
func NewJSONSink(w io.Writer, c codec.Codec) *JSONSink {
	if c == nil {
		c = codec.Default
	}
	return &JSONSink{lw: lineWriter{w: w}, codec: c}
}

// Emit implements Sink.
func (s *JSONSink) Emit(r model.Result) error {
	rec := NewRecord(r)

	if ap, ok := s.codec.(codec.Appender); ok {
		return s.lw.write(func(dst []byte) ([]byte, error) {
			dst, err := ap.Append(dst, rec)
			return append(dst, '\n'), err
		})
	}

	b, err := s.codec.Marshal(rec)
	if err != nil {
		return err
	}
	return s.lw.write(func(dst []byte) ([]byte, error) {
		dst = append(dst, b...)
		return append(dst, '\n'), nil
	})
}

// MsgPackSink writes one MessagePack record per result, back to back.
// The stream has no separators; a msgpack decoder reads it record by record.
type MsgPackSink struct {
	lw    lineWriter
	codec codec.MsgPack
}

// NewMsgPackSink returns a MsgPackSink writing to w.
func NewMsgPackSink(w io.Writer) *MsgPackSink {
	return &MsgPackSink{lw: lineWriter{w: w}}
}

// Emit implements Sink.
func (s *MsgPackSink) Emit(r model.Result) error {
	b, err := s.codec.Marshal(NewRecord(r))
	if err != nil {
		return err
	}
	return s.lw.write(func(dst []byte) ([]byte, error) {
		return append(dst, b...), nil
	})
}

// PreviewSink writes the short single-process format: a header per k and
// one line per result including the query coordinates.
type PreviewSink struct {
	lw lineWriter
}

// NewPreviewSink returns a PreviewSink writing to w.
func NewPreviewSink(w io.Writer) *PreviewSink {
	return &PreviewSink{lw: lineWriter{w: w}}
}

// BeginK implements SweepSink.
func (s *PreviewSink) BeginK(k int) error {
	return s.lw.write(func(dst []byte) ([]byte, error) {
		dst = append(dst, "Results for k = "...)
		dst = strconv.AppendInt(dst, int64(k), 10)
		dst = append(dst, " (showing first "...)
		dst = strconv.AppendInt(dst, PreviewPoints, 10)
		return append(dst, " points):\n"...), nil
	})
}

// PreviewPoints is the number of results shown per k by the preview format.
const PreviewPoints = 5

// Emit implements Sink.
func (s *PreviewSink) Emit(r model.Result) error {
	return s.lw.write(func(dst []byte) ([]byte, error) {
		q := r.Query
		dst = append(dst, "Point "...)
		dst = strconv.AppendInt(dst, int64(q.ID), 10)
		dst = append(dst, " ("...)
		dst = strconv.AppendFloat(dst, q.X, 'f', 2, 64)
		dst = append(dst, ", "...)
		dst = strconv.AppendFloat(dst, q.Y, 'f', 2, 64)
		dst = append(dst, ", "...)
		dst = strconv.AppendFloat(dst, q.Z, 'f', 2, 64)
		dst = append(dst, ") nearest neighbors: "...)
		dst = appendIDs(dst, r.Neighbors)
		return append(dst, '\n'), nil
	})
}

// Collector keeps every result in memory.
type Collector struct {
	mu      sync.Mutex
	results []model.Result
}

// Emit implements Sink.
func (c *Collector) Emit(r model.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	r.Neighbors = slices.Clone(r.Neighbors)
	c.results = append(c.results, r)
	return nil
}

// Results returns the collected results in emission order.
func (c *Collector) Results() []model.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.results)
}

// ByK returns the collected results of one k value, ordered by query ID.
func (c *Collector) ByK(k int) []model.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []model.Result
	for _, r := range c.results {
		if r.K == k {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b model.Result) int {
		return int(a.Query.ID) - int(b.Query.ID)
	})
	return out
}

type discard struct{}

func (discard) Emit(model.Result) error { return nil }

// Discard is a Sink that drops every result.
var Discard Sink = discard{}
