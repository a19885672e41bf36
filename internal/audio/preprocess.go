package audio

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// Normalize downmixes buf to mono, resamples it to targetRate and scales it
// to full peak. A buffer with no usable rate or channel count, or a rate
// outside the supported range, is returned as given.
func Normalize(buf *Buffer, targetRate int) *Buffer {
	if !buf.valid() || !ValidSampleRate(buf.SampleRate) || targetRate <= 0 {
		return buf
	}

	mono := DownmixMono(buf.Samples, buf.Channels)
	resampled := Resample(mono, buf.SampleRate, targetRate)
	return &Buffer{
		Samples:    NormalizePeak(resampled),
		SampleRate: targetRate,
		Channels:   1,
	}
}

// NormalizeFile decodes path and normalizes it. Decode failures wrap ErrDecode.
func NormalizeFile(path string, targetRate int) (*Buffer, error) {
	buf, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return Normalize(buf, targetRate), nil
}

// Prepared is what a backend receives after preprocessing. When Degraded is
// set the normalized buffer may be missing and Path points at the caller's
// untouched source file.
type Prepared struct {
	Path     string
	Buffer   *Buffer
	Degraded bool
	Err      error

	owned bool
}

// Cleanup removes the canonical file Prepare wrote, if any. The caller's
// source file is never touched.
func (p Prepared) Cleanup() error {
	if !p.owned {
		return nil
	}
	if err := os.Remove(p.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove processed audio: %w", err)
	}
	return nil
}

type Preprocessor struct {
	targetRate int
	tempDir    string
	logger     *slog.Logger
}

func NewPreprocessor(targetRate int, tempDir string, logger *slog.Logger) *Preprocessor {
	if targetRate <= 0 {
		targetRate = TargetSampleRate
	}
	return &Preprocessor{
		targetRate: targetRate,
		tempDir:    tempDir,
		logger:     logger.With("component", "preprocessor"),
	}
}

func (p *Preprocessor) TargetRate() int {
	return p.targetRate
}

// Prepare normalizes the audio at path. Preprocessing failure degrades to
// the raw input and never blocks transcription. With persist set, the
// normalized audio is also written to a new canonical WAV file that the
// caller releases with Prepared.Cleanup.
func (p *Preprocessor) Prepare(path string, persist bool) Prepared {
	buf, err := NormalizeFile(path, p.targetRate)
	if err != nil {
		p.logger.Warn("preprocessing failed, using raw audio", "path", path, "error", err)
		return Prepared{Path: path, Degraded: true, Err: err}
	}

	out := Prepared{Path: path, Buffer: buf}
	if !persist {
		return out
	}

	written, err := p.persist(buf)
	if err != nil {
		p.logger.Warn("could not persist processed audio, using raw file", "path", path, "error", err)
		out.Degraded = true
		out.Err = err
		return out
	}
	out.Path = written
	out.owned = true
	return out
}

func (p *Preprocessor) persist(buf *Buffer) (string, error) {
	f, err := os.CreateTemp(p.tempDir, "stt-processed-*.wav")
	if err != nil {
		return "", fmt.Errorf("create processed file: %w", err)
	}
	name := f.Name()

	if err := WriteWAV(f, buf); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("close processed file: %w", err)
	}
	return name, nil
}
