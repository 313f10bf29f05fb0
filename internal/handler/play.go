// Package handler streams animation playback to browsers over websockets.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kulaginds/aniplay/internal/config"
	"github.com/kulaginds/aniplay/internal/errs"
	"github.com/kulaginds/aniplay/internal/logging"
	"github.com/kulaginds/aniplay/internal/player"
	"github.com/kulaginds/aniplay/internal/source"
	"github.com/kulaginds/aniplay/internal/timing"
)

const (
	webSocketReadBufferSize  = 1024
	webSocketWriteBufferSize = 8192 * 2
)

// Binary message prefixes.
const (
	MessageAudio byte = 0x01
	MessageImage byte = 0x02
)

var errMediaPath = errors.New("invalid media path")

// initMessage is the first text message of every session.
type initMessage struct {
	Type       string  `json:"type"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Frames     int     `json:"frames"`
	Language   int     `json:"language"`
	FPS        float64 `json:"fps"`
	AudioDelay int     `json:"audioDelay"`
}

// endMessage is the last text message of every session.
type endMessage struct {
	Type   string `json:"type"`
	Frames int    `json:"frames"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

// Player returns the /play handler. The file query parameter names an
// animation inside cfg.Playback.MediaDir.
func Player(cfg *config.Config, table *timing.Table) http.HandlerFunc {
	log := logging.Default().Named("play")
	p := player.New(table, player.WithLogger(log))

	upgrader := websocket.Upgrader{
		ReadBufferSize:  webSocketReadBufferSize,
		WriteBufferSize: webSocketWriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return isAllowedOrigin(r.Header.Get("Origin"), cfg.Security.AllowedOrigins)
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		path, err := resolveMedia(cfg.Playback.MediaDir, r.URL.Query().Get("file"))
		switch {
		case errors.Is(err, errMediaPath):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "animation not found", http.StatusNotFound)
			return
		}

		wsConn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("upgrade websocket: %v", err)
			return
		}

		defer func() {
			closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = wsConn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))
			if err := wsConn.Close(); err != nil {
				log.Debug("close websocket: %v", err)
			}
		}()

		s := &wsSession{
			File:         source.File{Path: path},
			conn:         wsConn,
			ctl:          newControl(),
			log:          log,
			realtime:     cfg.Playback.Realtime,
			writeTimeout: cfg.Server.WriteTimeout,
		}

		go s.readCommands()
		state := p.Play(r.Context(), s)
		s.ctl.stop()

		log.Info("%s: %s after %d frames", filepath.Base(path), state, s.frames)
	}
}

// resolveMedia maps a client supplied name to a regular file inside dir.
func resolveMedia(dir, name string) (string, error) {
	if name == "" || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", errMediaPath, name)
	}

	rel := filepath.Clean("/" + filepath.FromSlash(name))
	if rel == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %q", errMediaPath, name)
	}

	path := filepath.Join(dir, rel)
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s: not a regular file", name)
	}

	// symlinks may point anywhere, so the real target must stay under dir
	root, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", err
	}
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}
	if inside, err := filepath.Rel(root, target); err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", name, os.ErrNotExist)
	}

	return path, nil
}

// wsSession is the player.Callback for one websocket client. Only the
// playback goroutine writes to the socket.
type wsSession struct {
	source.File

	conn         *websocket.Conn
	ctl          *control
	log          *logging.Logger
	realtime     bool
	writeTimeout time.Duration

	interval time.Duration
	frames   int
}

func (s *wsSession) readCommands() {
	defer s.ctl.stop()

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
				!strings.HasSuffix(err.Error(), "use of closed network connection") {
				s.log.Debug("read from ws: %v", err)
			}
			return
		}

		if msgType != websocket.TextMessage {
			continue
		}
		if cmd := strings.TrimSpace(string(data)); !s.ctl.apply(cmd) {
			s.log.Debug("ignoring client command %q", cmd)
		}
	}
}

func (s *wsSession) write(msgType int, data []byte) {
	if s.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	if err := s.conn.WriteMessage(msgType, data); err != nil {
		s.log.Debug("write to ws: %v", err)
		s.ctl.stop()
	}
}

func (s *wsSession) writeJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("encode message: %v", err)
		return
	}
	s.write(websocket.TextMessage, data)
}

func (s *wsSession) writeBinary(kind byte, payload []byte) {
	msg := make([]byte, 1+len(payload))
	msg[0] = kind
	copy(msg[1:], payload)
	s.write(websocket.BinaryMessage, msg)
}

func (s *wsSession) Initialize(info player.Info) {
	if info.FPS > 0 {
		s.interval = time.Duration(float64(time.Second) / info.FPS)
	}

	s.writeJSON(initMessage{
		Type:       "init",
		Width:      info.Width,
		Height:     info.Height,
		Frames:     info.Frames,
		Language:   info.Language,
		FPS:        info.FPS,
		AudioDelay: info.AudioDelay,
	})
}

func (s *wsSession) AudioData(data []byte) {
	s.writeBinary(MessageAudio, data)
}

func (s *wsSession) ImageReady(rgba []byte) {
	s.writeBinary(MessageImage, rgba)
	s.frames++

	s.ctl.waitWhilePaused()
	if s.realtime {
		s.ctl.sleep(s.interval)
	}
}

func (s *wsSession) StopRequested() bool { return s.ctl.isStopped() }

func (s *wsSession) PauseRequested() bool { return s.ctl.isPaused() }

func (s *wsSession) Finished() {
	s.writeJSON(endMessage{Type: "finished", Frames: s.frames})
}

func (s *wsSession) Stopped() {
	s.writeJSON(endMessage{Type: "stopped", Frames: s.frames})
}

func (s *wsSession) Fatal(err error) {
	s.writeJSON(endMessage{Type: "error", Frames: s.frames, Error: err.Error(), Kind: errorKind(err)})
}

// errorKind tells the viewer whether the file or the disk is at fault.
func errorKind(err error) string {
	switch {
	case errs.IsFormat(err):
		return "format"
	case errs.IsIO(err):
		return "io"
	default:
		return ""
	}
}
