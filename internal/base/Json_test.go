package base

import (
	"bytes"
	"strings"
	"testing"
)

type testJsonPayload struct {
	Format  CompressionFormat
	Level   CompressionLevel
	Entries map[string][]string
}

func TestJsonSerializeRoundtrip(t *testing.T) {
	in := testJsonPayload{
		Format: COMPRESSION_FORMAT_ZSTD,
		Level:  COMPRESSION_LEVEL_BEST,
		Entries: map[string][]string{
			"Hello.ice": {"generated/Hello.cpp", "generated/Hello.h"},
		},
	}

	var buf bytes.Buffer
	if err := JsonSerialize(&in, &buf, OptionJsonPrettyPrint(true)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"ZSTD"`) {
		t.Errorf("JsonSerialize: enums should be marshalled as text, got %s", buf.String())
	}

	var out testJsonPayload
	if err := JsonDeserialize(&out, &buf); err != nil {
		t.Fatal(err)
	}
	if out.Format != in.Format || out.Level != in.Level {
		t.Errorf("JsonDeserialize: expected %v/%v, got %v/%v", in.Format, in.Level, out.Format, out.Level)
	}
	if len(out.Entries["Hello.ice"]) != 2 {
		t.Errorf("JsonDeserialize: expected 2 entries, got %v", out.Entries)
	}
}

func TestJsonDeserializeInvalidEnum(t *testing.T) {
	var out testJsonPayload
	if err := JsonDeserialize(&out, strings.NewReader(`{"Format":"GZIP"}`)); err == nil {
		t.Errorf("JsonDeserialize: expected an error for unknown compression format")
	}
}
