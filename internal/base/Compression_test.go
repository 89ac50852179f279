package base

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func testCompressionRoundtrip(t *testing.T, format CompressionFormat, level CompressionLevel) {
	payload := strings.Repeat("module Demo { interface Hello { void sayHello(); } }\n", 256)

	var compressed bytes.Buffer
	wr := NewCompressedWriter(&compressed, CompressionOptionFormat(format), CompressionOptionLevel(level))
	if _, err := wr.Write([]byte(payload)); err != nil {
		t.Fatal(err)
	}
	if err := wr.Close(); err != nil {
		t.Fatal(err)
	}
	if compressed.Len() >= len(payload) {
		t.Errorf("%v/%v: expected compressed size < %d, got %d", format, level, len(payload), compressed.Len())
	}

	rd := NewCompressedReader(&compressed, CompressionOptionFormat(format))
	defer rd.Close()

	decompressed, err := io.ReadAll(rd)
	if err != nil {
		t.Fatal(err)
	}
	if string(decompressed) != payload {
		t.Errorf("%v/%v: decompressed payload does not match", format, level)
	}
}

func TestCompressionLz4(t *testing.T) {
	for _, level := range []CompressionLevel{COMPRESSION_LEVEL_FAST, COMPRESSION_LEVEL_BALANCED, COMPRESSION_LEVEL_BEST} {
		testCompressionRoundtrip(t, COMPRESSION_FORMAT_LZ4, level)
	}
}

func TestCompressionZStd(t *testing.T) {
	for _, level := range []CompressionLevel{COMPRESSION_LEVEL_FAST, COMPRESSION_LEVEL_BALANCED, COMPRESSION_LEVEL_BEST} {
		testCompressionRoundtrip(t, COMPRESSION_FORMAT_ZSTD, level)
	}
}

func TestCompressionOptionsInherit(t *testing.T) {
	co := NewCompressionOptions(CompressionOptionFormat(COMPRESSION_FORMAT_INHERIT), CompressionOptionLevel(COMPRESSION_LEVEL_INHERIT))
	if co.Format != COMPRESSION_FORMAT_LZ4 || co.Level != COMPRESSION_LEVEL_FAST {
		t.Errorf("NewCompressionOptions: expected LZ4/FAST defaults, got %v/%v", co.Format, co.Level)
	}
}

func TestCompressionFormatSet(t *testing.T) {
	var format CompressionFormat
	if err := format.Set("zstd"); err != nil || format != COMPRESSION_FORMAT_ZSTD {
		t.Errorf("Set: expected ZSTD, got %v (%v)", format, err)
	}
	if err := format.Set("gzip"); err == nil {
		t.Errorf("Set: expected an error for unknown format")
	}
}
