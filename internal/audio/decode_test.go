package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want container
	}{
		{"wav", []byte("RIFF\x00\x00\x00\x00WAVE"), containerWAV},
		{"flac", []byte("fLaC\x00\x00\x00\x22"), containerFLAC},
		{"mp3 id3", []byte("ID3\x04\x00"), containerMP3},
		{"mp3 frame sync", []byte{0xFF, 0xFB, 0x90, 0x00}, containerMP3},
		{"ogg", []byte("OggS\x00\x02\x00\x00"), containerOgg},
		{"riff but not wave", []byte("RIFF\x00\x00\x00\x00AVI "), containerUnknown},
		{"short", []byte("R"), containerUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniff(tt.head); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDecode_WAVRoundTrip(t *testing.T) {
	src := &Buffer{Samples: []float32{0, 0.5, -0.5, 0.25, -0.25, 0}, SampleRate: 8000, Channels: 2}
	data, err := EncodeWAV(src)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// extension is ignored when the header is recognisable
	got, err := Decode(bytes.NewReader(data), ".mp3")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.SampleRate != 8000 || got.Channels != 2 {
		t.Fatalf("unexpected format %d Hz %d ch", got.SampleRate, got.Channels)
	}
	if len(got.Samples) != len(src.Samples) {
		t.Fatalf("expected %d samples, got %d", len(src.Samples), len(got.Samples))
	}
	for i := range src.Samples {
		if math.Abs(float64(got.Samples[i]-src.Samples[i])) > 0.001 {
			t.Errorf("sample %d: expected ~%f, got %f", i, src.Samples[i], got.Samples[i])
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		ext         string
		unsupported bool
	}{
		{"unknown container", []byte("hello world, not audio"), ".m4a", true},
		{"ogg without vorbis", []byte("OggS\x00\x02 not a vorbis stream"), ".ogg", false},
		{"ogg by extension", []byte("garbage"), ".ogg", false},
		{"no extension", []byte("plain text"), "", true},
		{"truncated wav", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), ".wav", false},
		{"empty flac by extension", []byte{}, ".flac", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.data), tt.ext)
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("expected ErrDecode, got %v", err)
			}
			if errors.Is(err, ErrUnsupportedFormat) != tt.unsupported {
				t.Errorf("ErrUnsupportedFormat match = %v, want %v", !tt.unsupported, tt.unsupported)
			}
		})
	}
}

func TestEncodeWAV_RejectsMalformed(t *testing.T) {
	if _, err := EncodeWAV(&Buffer{Samples: []float32{0}}); err == nil {
		t.Error("expected error for buffer without rate")
	}
}

// withDeclaredRate rewrites the sample-rate and byte-rate fields of a
// canonical 16-bit WAV header.
func withDeclaredRate(data []byte, rate, channels int) []byte {
	out := append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(out[24:28], uint32(rate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(rate*channels*2))
	return out
}

func TestDecode_RejectsOutOfRangeRate(t *testing.T) {
	data, err := EncodeWAV(tone(2000, 1, 16000))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	for _, rate := range []int{1, MinSampleRate - 1, MaxSampleRate + 1} {
		_, err := Decode(bytes.NewReader(withDeclaredRate(data, rate, 1)), ".wav")
		if !errors.Is(err, ErrDecode) {
			t.Errorf("rate %d: expected ErrDecode, got %v", rate, err)
		}
	}

	got, err := Decode(bytes.NewReader(withDeclaredRate(data, MinSampleRate, 1)), ".wav")
	if err != nil {
		t.Fatalf("rate %d: unexpected error %v", MinSampleRate, err)
	}
	if got.SampleRate != MinSampleRate {
		t.Errorf("expected %d Hz, got %d", MinSampleRate, got.SampleRate)
	}
}

func TestContainerFromExt(t *testing.T) {
	tests := map[string]container{
		".wav":  containerWAV,
		"WAV":   containerWAV,
		".mp3":  containerMP3,
		".flac": containerFLAC,
		".ogg":  containerOgg,
		".m4a":  containerUnknown,
		".webm": containerUnknown,
		"":      containerUnknown,
	}
	for ext, want := range tests {
		if got := containerFromExt(ext); got != want {
			t.Errorf("containerFromExt(%q) = %q, want %q", ext, got, want)
		}
	}
	for _, ext := range DecodableExtensions {
		if containerFromExt(ext) == containerUnknown {
			t.Errorf("%s is listed as decodable but has no decoder", ext)
		}
	}
}
