package backend

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/gopxl/beep"
)

// sampleFormat is the byte layout a device expects
type sampleFormat int

const (
	formatInt16 sampleFormat = iota
	formatFloat32
)

func (f sampleFormat) frameBytes() int {
	if f == formatFloat32 {
		return 8
	}
	return 4
}

// streamReader adapts a beep.Streamer to an io.Reader of interleaved stereo frames
type streamReader struct {
	s      beep.Streamer
	format sampleFormat
	buf    [][2]float64
	trim   float64
}

func newStreamReader(s beep.Streamer, format sampleFormat, trim float64) *streamReader {
	return &streamReader{s: s, format: format, trim: trim}
}

// Read implements io.Reader; a finished stream reports io.EOF
func (r *streamReader) Read(p []byte) (int, error) {
	fb := r.format.frameBytes()
	frames := len(p) / fb
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([][2]float64, frames)
	}
	buf := r.buf[:frames]

	n, ok := r.s.Stream(buf)
	if !ok && n == 0 {
		if err := r.s.Err(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	for i := n; i < frames; i++ {
		buf[i] = [2]float64{}
	}

	for i, f := range buf {
		l, rr := f[0]*r.trim, f[1]*r.trim
		off := i * fb
		switch r.format {
		case formatFloat32:
			binary.LittleEndian.PutUint32(p[off:], math.Float32bits(float32(limit(l))))
			binary.LittleEndian.PutUint32(p[off+4:], math.Float32bits(float32(limit(rr))))
		default:
			binary.LittleEndian.PutUint16(p[off:], uint16(toInt16(l)))
			binary.LittleEndian.PutUint16(p[off+2:], uint16(toInt16(rr)))
		}
	}
	return frames * fb, nil
}

// limit applies a soft knee above 0.8 and a hard clip at full scale
func limit(v float64) float64 {
	if v > 0.8 {
		v = 0.8 + 0.2*(1.0-1.0/(1.0+(v-0.8)*5.0))
	} else if v < -0.8 {
		v = -0.8 - 0.2*(1.0-1.0/(1.0+(-v-0.8)*5.0))
	}
	if v > 1.0 {
		v = 1.0
	} else if v < -1.0 {
		v = -1.0
	}
	return v
}

func toInt16(v float64) int16 {
	return int16(limit(v) * 32767)
}
