package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/ofekfell/mediaflow/pkg/domain"
)

// CopyTable hands out a distinct file per leaf occurrence. Occurrence 1 of a
// path gets the path itself, occurrence k>1 gets alias k-2.
type CopyTable struct {
	limits  map[string]int
	aliases map[string][]string
	cursor  map[string]int
	created []string
}

// PrepareCopies duplicates every path used more than once into dir.
// The copies are byte-for-byte files, never links. onCopy, if set, is called
// after each copy is written. On failure the copies made so far are removed.
func PrepareCopies(ctx context.Context, usage *Usage, dir string, onCopy func(src, alias string)) (*CopyTable, error) {
	return prepare(ctx, usage, dir, onCopy, true)
}

// planCopies assigns alias names without writing any file.
func planCopies(usage *Usage, dir string) *CopyTable {
	t, _ := prepare(context.Background(), usage, dir, nil, false)
	return t
}

func prepare(ctx context.Context, usage *Usage, dir string, onCopy func(src, alias string), write bool) (*CopyTable, error) {
	t := &CopyTable{
		limits:  usage.Map(),
		aliases: make(map[string][]string),
		cursor:  make(map[string]int),
	}
	for _, path := range usage.Paths() {
		n := usage.Count(path)
		for i := 1; i < n; i++ {
			alias := filepath.Join(dir, fmt.Sprintf("copy_%d_%s_%s", i, uuid.New().String(), filepath.Base(path)))
			if write {
				if err := ctx.Err(); err != nil {
					t.Release()
					return nil, err
				}
				if err := copyFile(path, alias); err != nil {
					t.Release()
					return nil, fmt.Errorf("copy %s: %w", path, err)
				}
				t.created = append(t.created, alias)
				if onCopy != nil {
					onCopy(path, alias)
				}
			}
			t.aliases[path] = append(t.aliases[path], alias)
		}
	}
	return t, nil
}

// Next returns the path for the next occurrence of canonical.
func (t *CopyTable) Next(canonical string) (string, error) {
	k := t.cursor[canonical]
	if k >= t.limits[canonical] {
		return "", fmt.Errorf("%w: %s requested %d times, scanned %d",
			domain.ErrExhaustedAliases, canonical, k+1, t.limits[canonical])
	}
	t.cursor[canonical] = k + 1
	if k == 0 {
		return canonical, nil
	}
	return t.aliases[canonical][k-1], nil
}

// Aliases returns the copies prepared for canonical.
func (t *CopyTable) Aliases(canonical string) []string {
	return append([]string(nil), t.aliases[canonical]...)
}

// Copies returns the number of physical copies written.
func (t *CopyTable) Copies() int { return len(t.created) }

// Release deletes every copy written by the table.
func (t *CopyTable) Release() error {
	var errs []error
	for _, p := range t.created {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	t.created = nil
	return errors.Join(errs...)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
