package hasher

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/lumipallolabs/dupedive/internal/logging"
	"github.com/lumipallolabs/dupedive/internal/model"
)

const compareChunkSize = 64 * 1024

// SameContent compares two files byte for byte
func SameContent(ctx context.Context, a, b string) (bool, error) {
	fa, err := os.Open(a)
	if err != nil {
		return false, err
	}
	defer fa.Close()

	fb, err := os.Open(b)
	if err != nil {
		return false, err
	}
	defer fb.Close()

	bufA := make([]byte, compareChunkSize)
	bufB := make([]byte, compareChunkSize)
	ra := &ctxReader{ctx: ctx, r: fa}
	rb := &ctxReader{ctx: ctx, r: fb}

	for {
		na, errA := io.ReadFull(ra, bufA)
		nb, errB := io.ReadFull(rb, bufB)

		if !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}

		doneA := errA == io.EOF || errA == io.ErrUnexpectedEOF
		doneB := errB == io.EOF || errB == io.ErrUnexpectedEOF
		if errA != nil && !doneA {
			return false, errA
		}
		if errB != nil && !doneB {
			return false, errB
		}
		if doneA || doneB {
			return doneA == doneB, nil
		}
	}
}

// Partition splits a hash group into classes of byte-identical members.
// Classes with fewer than two members are dropped, as are members that
// can no longer be read. Member order is preserved within each class.
func Partition(ctx context.Context, g *model.DuplicateGroup) ([]*model.DuplicateGroup, error) {
	var classes []*model.DuplicateGroup

	for _, f := range g.Files {
		if err := readable(f.Path); err != nil {
			logging.Scanner.Printf("[Verify] skipping %s: %v", f.Path, err)
			continue
		}

		placed := false
		for i := 0; i < len(classes) && !placed; {
			c := classes[i]
			same, err := SameContent(ctx, c.Files[0].Path, f.Path)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				if rerr := readable(c.Files[0].Path); rerr != nil {
					// Representative vanished; the next member takes over
					logging.Scanner.Printf("[Verify] retiring %s: %v", c.Files[0].Path, rerr)
					c.Files = c.Files[1:]
					if len(c.Files) == 0 {
						classes = append(classes[:i], classes[i+1:]...)
					}
					continue
				}
				logging.Scanner.Printf("[Verify] skipping %s: %v", f.Path, err)
				placed = true
				break
			}
			if same {
				c.Files = append(c.Files, f)
				placed = true
				break
			}
			i++
		}
		if !placed {
			classes = append(classes, &model.DuplicateGroup{Hash: g.Hash, Files: []model.FileRecord{f}})
		}
	}

	out := classes[:0]
	for _, c := range classes {
		if c.IsDuplicate() {
			out = append(out, c)
		}
	}
	return out, nil
}

func readable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}
