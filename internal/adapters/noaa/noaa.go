// Package noaa documents the NOAA MarineCadastre archive contract and implements the
// one part of it that needs no network access: decompressing a fetched day's archive
// body into its underlying CSV stream, whichever of the two codecs NOAA used for that
// date (spec.md §6).
package noaa

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Source fetches one day's archived AIS feed. URL shape per spec.md §6:
// "…/{YYYY}/AIS_{YYYY}_{MM}_{DD}.zip" pre-2025, "…/{YYYY}/ais-{YYYY}-{MM}-{DD}.csv.zst"
// 2025 onward. Fetch performs the network GET and stream-to-temp-file handling
// (out of scope here per spec.md §1); callers pass the resulting body to ExtractCSV.
type Source interface {
	Fetch(ctx context.Context, date time.Time) (io.ReadCloser, error)
}

// archiveCutover is the date NOAA's distribution switched from ZIP-of-CSV to
// Zstandard-compressed CSV directly.
var archiveCutover = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// ExtractCSV decompresses one day's archive body into its underlying CSV stream. The
// caller is responsible for closing the returned ReadCloser.
func ExtractCSV(body io.Reader, date time.Time) (io.ReadCloser, error) {
	if date.Before(archiveCutover) {
		return extractZip(body)
	}
	return extractZstd(body)
}

// extractZip unpacks the single CSV member of a NOAA daily ZIP archive. archive/zip
// requires an io.ReaderAt, so the body is buffered in full before reading; NOAA's daily
// archives are a few tens of MB, well within a single in-memory read.
func extractZip(body io.Reader) (io.ReadCloser, error) {
	buf, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("adapters/noaa: read zip archive: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, fmt.Errorf("adapters/noaa: open zip archive: %w", err)
	}
	if len(zr.File) == 0 {
		return nil, fmt.Errorf("adapters/noaa: zip archive has no members")
	}

	member := zr.File[0]
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			member = f
			break
		}
	}
	rc, err := member.Open()
	if err != nil {
		return nil, fmt.Errorf("adapters/noaa: open zip member %q: %w", member.Name, err)
	}
	return rc, nil
}

func extractZstd(body io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(body)
	if err != nil {
		return nil, fmt.Errorf("adapters/noaa: open zstd stream: %w", err)
	}
	return dec.IOReadCloser(), nil
}
