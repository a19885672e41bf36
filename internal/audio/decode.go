package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

var (
	ErrDecode            = errors.New("audio: cannot decode input")
	ErrUnsupportedFormat = errors.New("audio: unsupported container")
)

type container string

const (
	containerUnknown container = ""
	containerWAV     container = "wav"
	containerMP3     container = "mp3"
	containerFLAC    container = "flac"
	containerOgg     container = "ogg"
)

// DecodableExtensions lists the containers Decode understands. Ogg is
// decoded only when it carries Vorbis; Ogg Opus, M4A, WebM and MP4 are
// passed to backends as raw files.
var DecodableExtensions = []string{".wav", ".mp3", ".flac", ".ogg"}

// DecodeFile reads and decodes the audio file at path.
func DecodeFile(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	return Decode(f, filepath.Ext(path))
}

// Decode parses r into a Buffer. The container is sniffed from the leading
// bytes first; ext is only consulted when the header is inconclusive.
func Decode(r io.ReadSeeker, ext string) (*Buffer, error) {
	head := make([]byte, 12)
	n, _ := io.ReadFull(r, head)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: rewind: %v", ErrDecode, err)
	}

	kind := sniff(head[:n])
	if kind == containerUnknown {
		kind = containerFromExt(ext)
	}

	var (
		buf *Buffer
		err error
	)
	switch kind {
	case containerWAV:
		buf, err = decodeWAV(r)
	case containerMP3:
		buf, err = decodeMP3(r)
	case containerFLAC:
		buf, err = decodeFLAC(r)
	case containerOgg:
		buf, err = decodeOggVorbis(r)
	default:
		return nil, fmt.Errorf("%w: %q: %w", ErrDecode, ext, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, kind, err)
	}
	if len(buf.Samples) == 0 {
		return nil, fmt.Errorf("%w: %s: no samples", ErrDecode, kind)
	}
	if !ValidSampleRate(buf.SampleRate) {
		return nil, fmt.Errorf("%w: %s: sample rate %d Hz outside %d-%d", ErrDecode, kind, buf.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if buf.Channels <= 0 {
		return nil, fmt.Errorf("%w: %s: no channels", ErrDecode, kind)
	}
	return buf, nil
}

func sniff(head []byte) container {
	switch {
	case len(head) >= 12 && bytes.Equal(head[0:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WAVE")):
		return containerWAV
	case len(head) >= 4 && bytes.Equal(head[0:4], []byte("fLaC")):
		return containerFLAC
	case len(head) >= 4 && bytes.Equal(head[0:4], []byte("OggS")):
		return containerOgg
	case len(head) >= 3 && bytes.Equal(head[0:3], []byte("ID3")):
		return containerMP3
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return containerMP3
	}
	return containerUnknown
}

func containerFromExt(ext string) container {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "wav", "wave":
		return containerWAV
	case "mp3":
		return containerMP3
	case "flac":
		return containerFLAC
	case "ogg", "oga":
		return containerOgg
	}
	return containerUnknown
}

func decodeWAV(r io.ReadSeeker) (*Buffer, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		if err := d.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("invalid wav header")
	}
	// 3 is IEEE float, which the integer PCM reader would misinterpret.
	if d.WavAudioFormat != 1 && d.WavAudioFormat != 0xFFFE {
		return nil, fmt.Errorf("wav format %d: %w", d.WavAudioFormat, ErrUnsupportedFormat)
	}

	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, err
	}

	depth := int(d.BitDepth)
	samples := make([]float32, len(pcm.Data))
	if depth == 8 {
		for i, v := range pcm.Data {
			samples[i] = float32(v-128) / 128
		}
	} else {
		scale := float32(int64(1) << (depth - 1))
		for i, v := range pcm.Data {
			samples[i] = float32(v) / scale
		}
	}

	return &Buffer{
		Samples:    samples,
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
	}, nil
}

// go-mp3 always emits 16-bit little-endian stereo.
func decodeMP3(r io.Reader) (*Buffer, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(d)
	if err != nil {
		return nil, err
	}
	return &Buffer{
		Samples:    Int16ToFloat32(PCMBytesToInt16(raw)),
		SampleRate: d.SampleRate(),
		Channels:   2,
	}, nil
}

func decodeFLAC(r io.Reader) (*Buffer, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	scale := float32(int64(1) << (stream.Info.BitsPerSample - 1))
	var samples []float32
	for {
		f, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(f.Subframes) == 0 {
			continue
		}
		n := len(f.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels && ch < len(f.Subframes); ch++ {
				samples = append(samples, float32(f.Subframes[ch].Samples[i])/scale)
			}
		}
	}

	return &Buffer{
		Samples:    samples,
		SampleRate: int(stream.Info.SampleRate),
		Channels:   channels,
	}, nil
}

func decodeOggVorbis(r io.Reader) (*Buffer, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &Buffer{
		Samples:    samples,
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
	}, nil
}
