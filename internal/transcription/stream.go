package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/eleven-am/whisper-gateway/internal/audio"
	"github.com/eleven-am/whisper-gateway/internal/dto"
	"github.com/eleven-am/whisper-gateway/internal/shared"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	streamFormatFile  = "file"
	streamFormatPCM16 = "pcm16"

	msgConfig = "config"
	msgEnd    = "end"
	msgReset  = "reset"
	msgReady  = "ready"
	msgResult = "result"
	msgError  = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Stream godoc
// @Summary      Streaming upload
// @Description  Websocket. Send an optional JSON config frame, binary audio frames, then {"type":"end"}.
// @Description  The server answers each end frame with a result or error frame.
// @Tags         transcription
// @Param        language  query  string  false  "Language code"
// @Success      101
// @Failure      503  {object}  shared.APIError
// @Router       /ws/transcribe [get]
func (h *Handler) Stream(c echo.Context) error {
	if _, err := h.service(); err != nil {
		return err
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return err
	}

	sess := newStreamSession(ws, h, c.QueryParam("language"))
	sess.run(c.Request().Context())
	return nil
}

type streamSession struct {
	ws      *websocket.Conn
	handler *Handler
	logger  *slog.Logger

	language   string
	filename   string
	format     string
	sampleRate int
	buf        bytes.Buffer

	writeMu sync.Mutex
	done    chan struct{}
}

func newStreamSession(ws *websocket.Conn, h *Handler, language string) *streamSession {
	id := shared.NewID("ws_")
	return &streamSession{
		ws:         ws,
		handler:    h,
		logger:     h.logger.With("stream_id", id),
		language:   NormalizeLanguage(language),
		filename:   "stream.wav",
		format:     streamFormatFile,
		sampleRate: audio.TargetSampleRate,
		done:       make(chan struct{}),
	}
}

func (s *streamSession) run(ctx context.Context) {
	defer s.ws.Close()
	go s.pingLoop()
	defer close(s.done)

	s.ws.SetReadLimit(s.handler.cfg.MaxUploadBytes + 4096)
	_ = s.ws.SetReadDeadline(time.Now().Add(pongWait))
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	s.send(dto.StreamMessage{Type: msgReady, Language: s.language, Format: s.format, SampleRate: s.sampleRate})

	for {
		kind, data, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", "error", err)
			}
			return
		}

		switch kind {
		case websocket.BinaryMessage:
			s.appendAudio(data)
		case websocket.TextMessage:
			s.handleControl(ctx, data)
		}
		_ = s.ws.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func (s *streamSession) appendAudio(data []byte) {
	limit := s.handler.cfg.MaxUploadBytes
	if int64(s.buf.Len()+len(data)) > limit {
		s.buf.Reset()
		s.sendError("capacity_exceeded", fmt.Sprintf("stream exceeds the %d byte limit, buffer discarded", limit))
		return
	}
	s.buf.Write(data)
}

func (s *streamSession) handleControl(ctx context.Context, data []byte) {
	var msg dto.StreamMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError("invalid_message", "control frames must be JSON")
		return
	}

	switch msg.Type {
	case msgConfig, "":
		if err := s.configure(msg); err != nil {
			s.sendError("invalid_config", err.Error())
			return
		}
		s.send(dto.StreamMessage{Type: msgReady, Language: s.language, Filename: s.filename, Format: s.format, SampleRate: s.sampleRate})
	case msgReset:
		s.buf.Reset()
		s.send(dto.StreamMessage{Type: msgReady, Language: s.language, Filename: s.filename, Format: s.format, SampleRate: s.sampleRate})
	case msgEnd:
		s.finish(ctx)
	default:
		s.sendError("invalid_message", "unknown message type "+msg.Type)
	}
}

// configure applies a config frame. Nothing changes when any field is invalid.
func (s *streamSession) configure(msg dto.StreamMessage) error {
	format := strings.ToLower(msg.Format)
	switch format {
	case "", streamFormatFile, streamFormatPCM16:
	default:
		return fmt.Errorf("format must be %s or %s", streamFormatFile, streamFormatPCM16)
	}
	if msg.SampleRate != 0 && !audio.ValidSampleRate(msg.SampleRate) {
		return fmt.Errorf("sample_rate must be between %d and %d", audio.MinSampleRate, audio.MaxSampleRate)
	}
	if msg.Filename != "" {
		if _, err := checkExtension(msg.Filename); err != nil {
			return errors.New("unsupported file extension " + filepath.Ext(msg.Filename))
		}
	}

	if format != "" {
		s.format = format
	}
	if msg.SampleRate != 0 {
		s.sampleRate = msg.SampleRate
	}
	if msg.Filename != "" {
		s.filename = msg.Filename
	}
	if msg.Language != "" {
		s.language = NormalizeLanguage(msg.Language)
	}
	return nil
}

func (s *streamSession) finish(ctx context.Context) {
	defer s.buf.Reset()

	received := int64(s.buf.Len())
	if received == 0 {
		s.sendError("empty_input", "no audio received")
		return
	}

	svc, err := s.handler.registry.Service()
	if err != nil {
		s.sendError("model_not_ready", "transcription model is not initialized")
		return
	}

	input, err := s.input()
	if err != nil {
		s.sendError("invalid_audio", err.Error())
		return
	}

	res, err := svc.Transcribe(ctx, Request{Input: input, Language: s.language, Filename: s.filename})
	if err != nil {
		s.logger.Error("stream transcription failed", "error", err)
		code := "transcription_failed"
		if errors.Is(err, ErrCapacityExceeded) {
			code = "capacity_exceeded"
		}
		s.sendError(code, err.Error())
		return
	}

	s.send(dto.StreamMessage{
		Type:           msgResult,
		Language:       s.language,
		Filename:       s.filename,
		Transcription:  res.Text,
		Success:        !res.Failed(),
		Code:           string(res.FailureKind),
		Backend:        res.Backend,
		ProcessingTime: roundSeconds(res.Elapsed),
		Received:       received,
	})
}

func (s *streamSession) input() (Input, error) {
	data := bytes.Clone(s.buf.Bytes())
	if s.format != streamFormatPCM16 {
		return FromBytes(data, filepath.Ext(s.filename)), nil
	}
	if len(data)%2 != 0 {
		return Input{}, errors.New("pcm16 stream has an odd number of bytes")
	}
	wav, err := audio.EncodeWAV(&audio.Buffer{
		Samples:    audio.Int16ToFloat32(audio.PCMBytesToInt16(data)),
		SampleRate: s.sampleRate,
		Channels:   1,
	})
	if err != nil {
		return Input{}, err
	}
	return FromBytes(wav, ".wav"), nil
}

func (s *streamSession) sendError(code, message string) {
	s.send(dto.StreamMessage{Type: msgError, Code: code, Message: message})
}

func (s *streamSession) send(msg dto.StreamMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to marshal message", "error", err)
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Warn("websocket write error", "error", err)
	}
}

func (s *streamSession) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			err := s.ws.WriteMessage(websocket.PingMessage, nil)
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
