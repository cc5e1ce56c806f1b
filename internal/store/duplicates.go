package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// DuplicateKind says how a group of files matched.
type DuplicateKind string

const (
	// DuplicateExact groups byte-identical files.
	DuplicateExact DuplicateKind = "exact"
	// DuplicateSimilar groups files whose difference hashes are equal.
	DuplicateSimilar DuplicateKind = "similar"
)

// DuplicateGroup is a set of stored filenames believed to hold the same image.
type DuplicateGroup struct {
	Kind      DuplicateKind
	Filenames []string
}

// DuplicateReport is the read-only result of FindDuplicates.
type DuplicateReport struct {
	Groups []DuplicateGroup
	// Missing lists stored filenames with no file in the directory.
	Missing []string
}

// FindDuplicates hashes every stored image under dir. It never mutates the
// store; duplicates are for the caller to report.
func (s *Store) FindDuplicates(ctx context.Context, dir string) (DuplicateReport, error) {
	var report DuplicateReport
	exact := make(map[uint64][]string)
	similar := make(map[uint64][]string)

	for _, name := range s.Filenames() {
		if err := ctx.Err(); err != nil {
			return DuplicateReport{}, err
		}
		path := filepath.Join(dir, name)
		sum, err := contentHash(path)
		if errors.Is(err, fs.ErrNotExist) {
			report.Missing = append(report.Missing, name)
			continue
		}
		if err != nil {
			return DuplicateReport{}, err
		}
		exact[sum] = append(exact[sum], name)

		dh, err := differenceHash(path)
		if err != nil {
			// Unreadable pixels still take part in the exact check.
			continue
		}
		similar[dh] = append(similar[dh], name)
	}

	exactSets := make(map[string]struct{})
	for _, names := range exact {
		if len(names) > 1 {
			report.Groups = append(report.Groups, DuplicateGroup{Kind: DuplicateExact, Filenames: names})
			exactSets[fmt.Sprint(names)] = struct{}{}
		}
	}
	for _, names := range similar {
		if len(names) < 2 {
			continue
		}
		if _, seen := exactSets[fmt.Sprint(names)]; seen {
			continue
		}
		report.Groups = append(report.Groups, DuplicateGroup{Kind: DuplicateSimilar, Filenames: names})
	}
	sort.Slice(report.Groups, func(i, j int) bool {
		a, b := report.Groups[i], report.Groups[j]
		if a.Filenames[0] != b.Filenames[0] {
			return a.Filenames[0] < b.Filenames[0]
		}
		return a.Kind < b.Kind
	})
	return report, nil
}

func contentHash(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, fmt.Errorf("hash %s: %w", filepath.Base(path), err)
	}
	return h.Sum64(), nil
}

// differenceHash is a 64-bit dHash: the image is shrunk to 9x8 grey pixels
// and each bit records whether a pixel is brighter than its right neighbour.
func differenceHash(path string) (uint64, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return 0, err
	}
	small := imaging.Resize(imaging.Grayscale(img), 9, 8, imaging.Box)
	var hash uint64
	for y := 0; y < 8; y++ {
		row := small.Pix[y*small.Stride:]
		for x := 0; x < 8; x++ {
			hash <<= 1
			if row[x*4] > row[(x+1)*4] {
				hash |= 1
			}
		}
	}
	return hash, nil
}
