package transcription

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eleven-am/whisper-gateway/internal/audio"
	"github.com/eleven-am/whisper-gateway/internal/backend"
	"github.com/eleven-am/whisper-gateway/internal/dto"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

func startStreamServer(t *testing.T, h *Handler) string {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e.Group(""))
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/transcribe"
}

func dialStream(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v (resp %v)", err, resp)
	}
	t.Cleanup(func() { conn.Close() })

	if msg := readStreamMessage(t, conn); msg.Type != msgReady {
		t.Fatalf("expected ready frame, got %+v", msg)
	}
	return conn
}

func readStreamMessage(t *testing.T, conn *websocket.Conn) dto.StreamMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg dto.StreamMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func TestStream_FileUpload(t *testing.T) {
	fb := &fakeBackend{}
	h := NewHandler(readyRegistry(t, fb), HandlerConfig{}, testLogger())
	conn := dialStream(t, startStreamServer(t, h)+"?language=en")

	data := toneWAV(t, 16000, 1, 0.2)
	half := len(data) / 2
	if err := conn.WriteMessage(websocket.BinaryMessage, data[:half]); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data[half:]); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteJSON(dto.StreamMessage{Type: msgEnd}); err != nil {
		t.Fatalf("write end: %v", err)
	}

	msg := readStreamMessage(t, conn)
	if msg.Type != msgResult || !msg.Success || msg.Transcription != "hello world" {
		t.Fatalf("unexpected result %+v", msg)
	}
	if msg.Received != int64(len(data)) || msg.Language != "en" {
		t.Errorf("unexpected metadata %+v", msg)
	}
	if _, lang := fb.call(0); lang != "en" {
		t.Errorf("expected language from query, got %q", lang)
	}
}

func TestStream_PCM16(t *testing.T) {
	fb := &fakeBackend{}
	h := NewHandler(readyRegistry(t, fb), HandlerConfig{}, testLogger())
	conn := dialStream(t, startStreamServer(t, h))

	if err := conn.WriteJSON(dto.StreamMessage{Type: msgConfig, Format: "pcm16", SampleRate: 8000, Language: "vi"}); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if msg := readStreamMessage(t, conn); msg.Type != msgReady || msg.SampleRate != 8000 {
		t.Fatalf("expected config ack, got %+v", msg)
	}

	pcm := make([]byte, 8000*2)
	for i := 0; i < len(pcm); i += 2 {
		pcm[i] = byte(i)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, pcm); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteJSON(dto.StreamMessage{Type: msgEnd}); err != nil {
		t.Fatalf("write end: %v", err)
	}

	msg := readStreamMessage(t, conn)
	if msg.Type != msgResult || !msg.Success {
		t.Fatalf("unexpected result %+v", msg)
	}
	in, lang := fb.call(0)
	buf := in.Buffer
	if buf == nil || !buf.IsCanonical(audio.TargetSampleRate) {
		t.Fatalf("expected canonical buffer, got %+v", buf)
	}
	if len(buf.Samples) != audio.TargetSampleRate {
		t.Errorf("expected one second at 16kHz, got %d samples", len(buf.Samples))
	}
	if lang != "vi" {
		t.Errorf("expected configured language, got %q", lang)
	}
}

func TestStream_Errors(t *testing.T) {
	fb := &fakeBackend{}
	h := NewHandler(readyRegistry(t, fb), HandlerConfig{MaxUploadBytes: 1024}, testLogger())
	conn := dialStream(t, startStreamServer(t, h))

	if err := conn.WriteJSON(dto.StreamMessage{Type: msgEnd}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readStreamMessage(t, conn); msg.Type != msgError || msg.Code != "empty_input" {
		t.Errorf("expected empty_input error, got %+v", msg)
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, make([]byte, 1025)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readStreamMessage(t, conn); msg.Type != msgError || msg.Code != "capacity_exceeded" {
		t.Errorf("expected capacity_exceeded error, got %+v", msg)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readStreamMessage(t, conn); msg.Code != "invalid_message" {
		t.Errorf("expected invalid_message error, got %+v", msg)
	}

	invalidConfigs := []dto.StreamMessage{
		{Type: msgConfig, Format: "opus"},
		{Type: msgConfig, Format: "pcm16", SampleRate: 1},
		{Type: msgConfig, Format: "pcm16", SampleRate: -16000},
		{Type: msgConfig, Format: "pcm16", SampleRate: audio.MaxSampleRate + 1},
	}
	for _, cfg := range invalidConfigs {
		if err := conn.WriteJSON(cfg); err != nil {
			t.Fatalf("write: %v", err)
		}
		if msg := readStreamMessage(t, conn); msg.Code != "invalid_config" {
			t.Errorf("config %+v: expected invalid_config error, got %+v", cfg, msg)
		}
	}

	if fb.callCount() != 0 {
		t.Errorf("expected no backend calls, got %d", fb.callCount())
	}
}

func TestStream_FailureResult(t *testing.T) {
	fb := &fakeBackend{fn: func(context.Context, backend.Audio, string) (backend.Transcript, error) {
		return backend.Transcript{}, &backend.Failure{Kind: backend.KindRateLimited}
	}}
	h := NewHandler(readyRegistry(t, fb), HandlerConfig{}, testLogger())
	conn := dialStream(t, startStreamServer(t, h))

	if err := conn.WriteMessage(websocket.BinaryMessage, toneWAV(t, 16000, 1, 0.1)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteJSON(dto.StreamMessage{Type: msgEnd}); err != nil {
		t.Fatalf("write end: %v", err)
	}

	msg := readStreamMessage(t, conn)
	if msg.Type != msgResult || msg.Success || msg.Code != string(backend.KindRateLimited) {
		t.Errorf("expected failed result, got %+v", msg)
	}
	if msg.Transcription != "Rate limit exceeded, please retry later" {
		t.Errorf("unexpected diagnostic %q", msg.Transcription)
	}
}

func TestStream_NotReady(t *testing.T) {
	h := NewHandler(pendingRegistry(), HandlerConfig{}, testLogger())
	url := startStreamServer(t, h)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %v", resp)
	}
}
