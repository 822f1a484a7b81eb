package pricedb

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/govalues/ledger"
	"github.com/pkg/errors"
)

// FileStore keeps prices as price directives in a text file, one per line:
//
//	P 2023/01/01 AAPL $150.00
//
// A missing file is an empty store.
type FileStore struct {
	path string
	opts options
}

// NewFileStore returns a store backed by the file at path.
// The file is created by the first [FileStore.Put].
func NewFileStore(path string, opts ...Option) *FileStore {
	return &FileStore{path: path, opts: newOptions(opts)}
}

// Path returns the file name of the store.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) lines() ([]string, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %v", s.path)
	}
	defer f.Close()

	var res []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		res = append(res, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %v", s.path)
	}
	return res, nil
}

// List parses every directive of the file.
// Blank lines and lines starting with ';' or '#' are skipped.
func (s *FileStore) List(ctx context.Context, p *ledger.Pool) ([]ledger.Price, error) {
	lines, err := s.lines()
	if err != nil {
		return nil, err
	}
	var res []ledger.Price
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if line == "" || line[0] == ';' || line[0] == '#' {
			continue
		}
		r, err := p.ParsePriceDirective(line)
		if err != nil {
			return nil, errors.Wrapf(err, "%v:%d", s.path, i+1)
		}
		res = append(res, r)
	}
	s.opts.logger.Debug().Str("path", s.path).Int("prices", len(res)).Msg("prices listed")
	return res, nil
}

// Put appends the directives of prices not yet in the file.
func (s *FileStore) Put(ctx context.Context, prices ...ledger.Price) error {
	lines, err := s.lines()
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		seen[line] = true
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open %v", s.path)
	}
	w := bufio.NewWriter(f)
	added := 0
	for _, r := range prices {
		if err := ctx.Err(); err != nil {
			f.Close()
			return err
		}
		line := r.String()
		if seen[line] {
			continue
		}
		seen[line] = true
		if _, err := w.WriteString(line + "\n"); err != nil {
			f.Close()
			return errors.Wrapf(err, "write %v", s.path)
		}
		added++
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %v", s.path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %v", s.path)
	}
	s.opts.logger.Debug().Str("path", s.path).Int("added", added).Msg("prices stored")
	return nil
}

// Close does nothing; the file is only open during List and Put.
func (s *FileStore) Close() error {
	return nil
}
