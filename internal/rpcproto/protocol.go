// Package rpcproto implements the length-prefixed JSON wire protocol shared
// by the front-end's processing client and the back-end's processing server.
// Every message is a 4-byte big-endian length prefix followed by that many
// bytes of UTF-8 JSON.
package rpcproto

import (
	"encoding/binary"
	"encoding/json"
	"io"

	"github.com/agustinabelencapo0/scrapecoord/internal/types"
)

// MaxMessageSize bounds the length prefix to guard against a corrupt or
// hostile peer claiming an absurd message size.
const MaxMessageSize = 100_000_000

const headerSize = 4

// WriteMessage frames payload as JSON and writes it to w as
// [4-byte big-endian length][JSON bytes].
func WriteMessage(w io.Writer, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return &types.FormatError{Err: err}
	}
	if len(data) > MaxMessageSize {
		return &types.FramingError{Reason: "message too large to send"}
	}

	header := make([]byte, headerSize)
	binary.BigEndian.PutUint32(header, uint32(len(data)))

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadMessage reads one framed message from r and decodes it into v.
func ReadMessage(r io.Reader, v any) error {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return err
	}

	length := binary.BigEndian.Uint32(header)
	if length == 0 || length > MaxMessageSize {
		return &types.FramingError{Reason: "invalid message length"}
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		// The peer announced length bytes and hung up early.
		return &types.FramingError{Reason: "connection closed mid-message"}
	}

	if err := json.Unmarshal(data, v); err != nil {
		return &types.FormatError{Err: err}
	}
	return nil
}
