//go:build !whisper

package backend

import "errors"

func loadWhisperModel(path string, threads int) (Model, error) {
	return nil, errors.New("whisper.cpp support not compiled in, rebuild with -tags whisper")
}
