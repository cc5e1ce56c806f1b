package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"wallcrop/internal/fileutil"
	"wallcrop/internal/geometry"
	"wallcrop/internal/services"
	"wallcrop/internal/wallpaper"
)

// Fixed CSV columns around the per-ratio crop columns.
var (
	csvLeading  = []string{"filename", "width", "height", "faces"}
	csvTrailing = []string{"wallust"}
)

type csvBackend struct {
	path string
}

func (b *csvBackend) load(_ context.Context) (table, error) {
	f, err := os.Open(b.path)
	if err != nil {
		return table{}, fmt.Errorf("open store: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return table{}, nil
	}
	if err != nil {
		return table{}, services.Wrap(services.ErrInput, "store", "read header", b.path, err)
	}
	ratios, err := parseHeader(header)
	if err != nil {
		return table{}, err
	}

	var t table
	t.ratios = ratios
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return table{}, services.Wrap(services.ErrInput, "store", "read row", b.path, err)
		}
		info, err := parseRow(row, ratios)
		if err != nil {
			return table{}, err
		}
		t.records = append(t.records, info)
	}
	return t, nil
}

func parseHeader(header []string) ([]geometry.AspectRatio, error) {
	want := len(csvLeading) + len(csvTrailing)
	if len(header) < want {
		return nil, services.Wrap(services.ErrInput, "store", "read header", fmt.Sprintf("expected at least %d columns, got %d", want, len(header)), nil)
	}
	for i, name := range csvLeading {
		if header[i] != name {
			return nil, services.Wrap(services.ErrInput, "store", "read header", fmt.Sprintf("column %d is %q, want %q", i, header[i], name), nil)
		}
	}
	if last := header[len(header)-1]; last != csvTrailing[0] {
		return nil, services.Wrap(services.ErrInput, "store", "read header", fmt.Sprintf("last column is %q, want %q", last, csvTrailing[0]), nil)
	}
	cols := header[len(csvLeading) : len(header)-len(csvTrailing)]
	ratios := make([]geometry.AspectRatio, 0, len(cols))
	for _, col := range cols {
		ratio, err := geometry.ParseAspectRatio(col)
		if err != nil {
			return nil, err
		}
		ratios = append(ratios, ratio)
	}
	return ratios, nil
}

func parseRow(row []string, ratios []geometry.AspectRatio) (wallpaper.Info, error) {
	width, err := strconv.ParseUint(row[1], 10, 32)
	if err != nil {
		return wallpaper.Info{}, services.Wrap(services.ErrInput, "store", "read row", fmt.Sprintf("%s: width %q", row[0], row[1]), err)
	}
	height, err := strconv.ParseUint(row[2], 10, 32)
	if err != nil {
		return wallpaper.Info{}, services.Wrap(services.ErrInput, "store", "read row", fmt.Sprintf("%s: height %q", row[0], row[2]), err)
	}
	faces, err := decodeFaces(row[0], row[3])
	if err != nil {
		return wallpaper.Info{}, err
	}
	info := wallpaper.Info{
		Filename: row[0],
		Width:    uint32(width),
		Height:   uint32(height),
		Faces:    faces,
		Wallust:  row[len(row)-1],
	}
	for i, ratio := range ratios {
		cell := row[len(csvLeading)+i]
		if cell == "" {
			continue
		}
		g, err := decodeCell(info, ratio, cell)
		if err != nil {
			return wallpaper.Info{}, err
		}
		info.SetGeometry(ratio, g)
	}
	return info, nil
}

func (b *csvBackend) save(_ context.Context, t table) error {
	return fileutil.WriteAtomic(b.path, 0o644, func(out io.Writer) error {
		w := csv.NewWriter(out)
		header := append([]string(nil), csvLeading...)
		for _, ratio := range t.ratios {
			header = append(header, ratio.String())
		}
		header = append(header, csvTrailing...)
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write store header: %w", err)
		}
		for _, info := range t.records {
			faces, err := encodeFaces(info.Faces)
			if err != nil {
				return err
			}
			row := []string{
				info.Filename,
				strconv.FormatUint(uint64(info.Width), 10),
				strconv.FormatUint(uint64(info.Height), 10),
				faces,
			}
			for _, ratio := range t.ratios {
				row = append(row, encodeCell(info.Geometries[ratio.Key()]))
			}
			row = append(row, info.Wallust)
			if err := w.Write(row); err != nil {
				return fmt.Errorf("write store row: %w", err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("flush store: %w", err)
		}
		return nil
	})
}
