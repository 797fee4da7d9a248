// Package hasher computes content identities for files.
package hasher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/lumipallolabs/dupedive/internal/model"
)

// Algorithm names a supported content digest
type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	XXH64  Algorithm = "xxh64"
	CRC32  Algorithm = "crc32"
)

// Default is used when no algorithm is configured
const Default = SHA256

// Algorithms lists the supported digests
func Algorithms() []Algorithm {
	return []Algorithm{SHA256, XXH64, CRC32}
}

// Hasher computes a ContentHash from a byte stream
type Hasher struct {
	alg     Algorithm
	newHash func() hash.Hash
}

// New returns a hasher for the named algorithm
func New(name string) (*Hasher, error) {
	alg := Algorithm(name)
	if alg == "" {
		alg = Default
	}

	var fn func() hash.Hash
	switch alg {
	case SHA256:
		fn = sha256.New
	case XXH64:
		fn = func() hash.Hash { return xxhash.New() }
	case CRC32:
		fn = func() hash.Hash { return crc32.NewIEEE() }
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", name)
	}
	return &Hasher{alg: alg, newHash: fn}, nil
}

// Algorithm returns the digest this hasher produces
func (h *Hasher) Algorithm() Algorithm {
	return h.alg
}

// Strong reports whether collisions among distinct contents are
// negligible in practice
func (h *Hasher) Strong() bool {
	return h.alg == SHA256
}

// Sum reads r to EOF and returns its digest and the number of bytes read.
// Reading stops with ctx.Err() once ctx is done.
func (h *Hasher) Sum(ctx context.Context, r io.Reader) (model.ContentHash, int64, error) {
	d := h.newHash()
	n, err := io.Copy(d, &ctxReader{ctx: ctx, r: r})
	if err != nil {
		return "", n, err
	}
	return model.ContentHash(hex.EncodeToString(d.Sum(nil))), n, nil
}

// ctxReader fails reads once its context is done
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
