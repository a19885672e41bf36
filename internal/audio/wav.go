package audio

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const canonicalBitDepth = 16

// WriteWAV encodes buf as 16-bit integer PCM. The encoder rewrites the RIFF
// header on completion, hence the WriteSeeker.
func WriteWAV(w io.WriteSeeker, buf *Buffer) error {
	if !buf.valid() {
		return errors.New("write wav: empty or malformed buffer")
	}

	pcm := Float32ToInt16(buf.Samples)
	data := make([]int, len(pcm))
	for i, s := range pcm {
		data[i] = int(s)
	}

	enc := wav.NewEncoder(w, buf.SampleRate, canonicalBitDepth, buf.Channels, 1)
	err := enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: buf.Channels, SampleRate: buf.SampleRate},
		Data:           data,
		SourceBitDepth: canonicalBitDepth,
	})
	if err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// EncodeWAV returns buf as an in-memory WAV file.
func EncodeWAV(buf *Buffer) ([]byte, error) {
	ws := &memWriteSeeker{}
	if err := WriteWAV(ws, buf); err != nil {
		return nil, err
	}
	return ws.buf, nil
}

type memWriteSeeker struct {
	buf []byte
	pos int
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		m.buf = append(m.buf, make([]byte, end-len(m.buf))...)
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(m.pos) + offset
	case io.SeekEnd:
		next = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("seek: invalid whence")
	}
	if next < 0 {
		return 0, errors.New("seek: negative position")
	}
	m.pos = int(next)
	return next, nil
}
