package media

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/image/webp"
)

// Fingerprinter derives a content key for a file. Files with equal keys
// are treated as the same sticker.
type Fingerprinter interface {
	Fingerprint(path string) (string, error)
}

// Fingerprint modes.
const (
	ModeBytes  = "bytes"
	ModePixels = "pixels"
)

// NewFingerprinter returns the Fingerprinter for mode.
func NewFingerprinter(mode string) (Fingerprinter, error) {
	switch mode {
	case "", ModeBytes:
		return ByteFingerprinter{}, nil
	case ModePixels:
		return PixelFingerprinter{}, nil
	default:
		return nil, fmt.Errorf("unknown fingerprint mode %q: must be bytes or pixels", mode)
	}
}

// ByteFingerprinter hashes the raw file content with BLAKE2b-256.
type ByteFingerprinter struct{}

// Fingerprint implements Fingerprinter.
func (ByteFingerprinter) Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// PixelFingerprinter decodes a WebP image and hashes its dimensions and
// RGBA pixels, so re-encoded copies of one sticker share a key.
type PixelFingerprinter struct{}

// Fingerprint implements Fingerprinter.
func (PixelFingerprinter) Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, err := webp.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode webp: %w", err)
	}

	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	var dims [8]byte
	binary.BigEndian.PutUint32(dims[:4], uint32(b.Dx()))
	binary.BigEndian.PutUint32(dims[4:], uint32(b.Dy()))
	h.Write(dims[:])
	h.Write(rgba.Pix)
	return hex.EncodeToString(h.Sum(nil)), nil
}
