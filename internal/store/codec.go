package store

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
	"lukechampine.com/blake3"

	"zenith/internal/game"
)

var ErrChecksum = errors.New("store: snapshot checksum mismatch")

// Encode serializes s as lz4-compressed JSON and returns the blob with its
// BLAKE3 checksum.
func Encode(s game.GameState) ([]byte, string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, "", fmt.Errorf("marshal state: %w", err)
	}
	blob, err := Compress(raw)
	if err != nil {
		return nil, "", err
	}
	return blob, Checksum(blob), nil
}

// Decode verifies blob against sum and merges it over the initial state.
// An empty sum skips verification.
func Decode(blob []byte, sum string) (game.GameState, error) {
	if sum != "" && Checksum(blob) != sum {
		return game.GameState{}, ErrChecksum
	}
	raw, err := Decompress(blob)
	if err != nil {
		return game.GameState{}, err
	}
	s, err := game.Merge(raw)
	if err != nil {
		return game.GameState{}, fmt.Errorf("decode state: %w", err)
	}
	return s, nil
}

func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 close: %w", err)
	}
	return buf.Bytes(), nil
}

func Decompress(data []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(data))
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("lz4 read: %w", err)
	}
	return out, nil
}

// Checksum is the hex BLAKE3-256 digest of data.
func Checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
