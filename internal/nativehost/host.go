// Package nativehost implements the host side of the browser
// native-messaging contract: each message is a 4-byte native-endian length
// prefix followed by that many bytes of UTF-8 JSON, in both directions.
package nativehost

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrenko/passlock/internal/logging"
	"github.com/dmitrenko/passlock/internal/session"
	"github.com/dmitrenko/passlock/internal/urlx"
)

// maxMessageSize caps the declared length of an inbound message. The check
// happens before the body is read, bounding memory exposure to a malicious
// or buggy peer.
const maxMessageSize = 1 << 20

var errMessageTooLarge = errors.New("message exceeds size limit")

// Host reads framed requests from in, answers them from the shared session
// handle, and writes framed responses to out. It runs until in is closed.
type Host struct {
	in     io.Reader
	out    *bufio.Writer
	handle *session.Handle
	logger logging.Logger
}

type hostEntry struct {
	EntryName string `json:"entryname"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

func New(in io.Reader, out io.Writer, handle *session.Handle, logger logging.Logger) *Host {
	return &Host{
		in:     in,
		out:    bufio.NewWriter(out),
		handle: handle,
		logger: logger.With("component", "nativehost"),
	}
}

// Run loops over inbound messages until EOF. An oversized declared length
// desynchronizes the stream, so the host answers with a structured error
// and stops; every other malformed message gets an error response and the
// loop continues.
func (h *Host) Run(ctx context.Context) error {
	h.logger.Info(ctx, "native messaging host started")

	for {
		raw, err := h.readMessage()
		if errors.Is(err, io.EOF) {
			h.logger.Info(ctx, "stdin closed, native host exiting")
			return nil
		}
		if errors.Is(err, errMessageTooLarge) {
			h.logger.Warn(ctx, "oversized message rejected")
			_ = h.writeMessage(map[string]string{"error": "message too large"})
			return err
		}
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		resp := h.handleMessage(ctx, raw)
		if err := h.writeMessage(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
}

func (h *Host) readMessage() ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(h.in, lenBuf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}

	length := binary.NativeEndian.Uint32(lenBuf[:])
	if length > maxMessageSize {
		return nil, errMessageTooLarge
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(h.in, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (h *Host) writeMessage(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var lenBuf [4]byte
	binary.NativeEndian.PutUint32(lenBuf[:], uint32(len(data)))

	if _, err := h.out.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := h.out.Write(data); err != nil {
		return err
	}
	return h.out.Flush()
}

func (h *Host) handleMessage(ctx context.Context, raw []byte) any {
	var msg struct {
		Origin string `json:"origin"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.logger.Warn(ctx, "malformed message")
		return map[string]string{"error": "invalid origin"}
	}

	origin, ok := urlx.NormalizeOrigin(msg.Origin)
	if !ok {
		h.logger.Warn(ctx, "invalid origin in message")
		return map[string]string{"error": "invalid origin"}
	}

	var matches []hostEntry
	active := false

	h.handle.Visit(func(s *session.Session) {
		if s == nil || !s.Active() {
			return
		}
		active = true
		for _, e := range s.Vault().ListEntries() {
			if e.URL == "" {
				continue
			}
			if urlx.DomainsMatch(e.URL, origin) {
				matches = append(matches, hostEntry{
					EntryName: e.Name,
					Username:  e.Username,
					Password:  e.Password,
				})
			}
		}
	})

	if !active {
		return map[string]string{"error": "no session active"}
	}

	h.logger.Debug(ctx, "lookup finished", "matches", len(matches))

	switch len(matches) {
	case 0:
		return map[string]bool{"found": false}
	case 1:
		return map[string]any{
			"found":     true,
			"entryname": matches[0].EntryName,
			"username":  matches[0].Username,
			"password":  matches[0].Password,
		}
	default:
		return map[string]any{"entries": matches}
	}
}
