package noaa

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "mmsi,timestamp,lat,lon\n636017000,2026-01-01T00:00:00Z,55.5,20.1\n"

func buildZip(t *testing.T, name string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func buildZstd(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = enc.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	return buf.Bytes()
}

func TestExtractCSVPre2025UsesZip(t *testing.T) {
	archive := buildZip(t, "AIS_2024_06_01.csv")
	rc, err := ExtractCSV(bytes.NewReader(archive), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(got))
}

func TestExtractCSVSelectsCSVMemberAmongMultiple(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	readme, err := zw.Create("README.txt")
	require.NoError(t, err)
	_, err = readme.Write([]byte("not csv"))
	require.NoError(t, err)
	csvEntry, err := zw.Create("AIS_2024_06_01.csv")
	require.NoError(t, err)
	_, err = csvEntry.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	rc, err := ExtractCSV(bytes.NewReader(buf.Bytes()), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(got))
}

func Test2025OnwardUsesZstd(t *testing.T) {
	archive := buildZstd(t)
	rc, err := ExtractCSV(bytes.NewReader(archive), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(got))
}

func TestExtractCSVRejectsEmptyZip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	require.NoError(t, zw.Close())

	_, err := ExtractCSV(bytes.NewReader(buf.Bytes()), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}
