package audio

import "time"

type Info struct {
	Duration   time.Duration
	SampleRate int
	Channels   int
}

// Inspect decodes path just far enough to report its duration and format.
func Inspect(path string) (Info, error) {
	buf, err := DecodeFile(path)
	if err != nil {
		return Info{}, err
	}
	return Info{
		Duration:   buf.Duration(),
		SampleRate: buf.SampleRate,
		Channels:   buf.Channels,
	}, nil
}
