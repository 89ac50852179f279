package base

import (
	"io"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/pierrec/lz4/v4"
)

var LogCompression = NewLogCategory("Compression")

type CompressedReader interface {
	io.ReadCloser
}
type CompressedWriter interface {
	Flush() error
	io.WriteCloser
}

type CompressionOptions struct {
	Format CompressionFormat
	Level  CompressionLevel
}

type CompressionOptionFunc func(*CompressionOptions)

func CompressionOptionFormat(fmt CompressionFormat) CompressionOptionFunc {
	return func(co *CompressionOptions) {
		if !fmt.IsInheritable() {
			co.Format = fmt
		}
	}
}
func CompressionOptionLevel(lvl CompressionLevel) CompressionOptionFunc {
	return func(co *CompressionOptions) {
		if !lvl.IsInheritable() {
			co.Level = lvl
		}
	}
}

func NewCompressionOptions(options ...CompressionOptionFunc) (result CompressionOptions) {
	// lz4 in fast mode costs almost nothing over raw IO
	result.Format = COMPRESSION_FORMAT_LZ4
	result.Level = COMPRESSION_LEVEL_FAST

	for _, opt := range options {
		opt(&result)
	}
	return
}

func NewCompressedReader(reader io.Reader, options ...CompressionOptionFunc) CompressedReader {
	co := NewCompressionOptions(options...)
	switch co.Format {
	case COMPRESSION_FORMAT_LZ4:
		return NewLz4Reader(reader)
	case COMPRESSION_FORMAT_ZSTD:
		return NewZStdReader(reader)
	default:
		UnexpectedValuePanic(co.Format, co.Format)
		return nil
	}
}

func NewCompressedWriter(writer io.Writer, options ...CompressionOptionFunc) CompressedWriter {
	co := NewCompressionOptions(options...)
	switch co.Format {
	case COMPRESSION_FORMAT_LZ4:
		return NewLz4Writer(writer, co.Level)
	case COMPRESSION_FORMAT_ZSTD:
		return NewZStdWriter(writer, co.Level)
	default:
		UnexpectedValuePanic(co.Format, co.Format)
		return nil
	}
}

/***************************************
 * LZ4 Compression
 ***************************************/

type lz4Reader struct {
	*lz4.Reader
}

func (x lz4Reader) Close() error { return nil }

func NewLz4Reader(reader io.Reader) CompressedReader {
	r := lz4.NewReader(reader)
	LogPanicIfFailed(LogCompression, r.Apply(lz4.ConcurrencyOption(1)))
	return lz4Reader{r}
}

func NewLz4Writer(writer io.Writer, lvl CompressionLevel) CompressedWriter {
	w := lz4.NewWriter(writer)
	options := []lz4.Option{
		lz4.ConcurrencyOption(1),
		lz4.ChecksumOption(false),
	}
	switch lvl {
	case COMPRESSION_LEVEL_BALANCED:
		options = append(options, lz4.CompressionLevelOption(lz4.Level3))
	case COMPRESSION_LEVEL_BEST:
		options = append(options, lz4.CompressionLevelOption(lz4.Level7))
	default:
		options = append(options, lz4.CompressionLevelOption(lz4.Fast))
	}
	LogPanicIfFailed(LogCompression, w.Apply(options...))
	return w
}

/***************************************
 * ZSTD Compression
 ***************************************/

func getZStdCompressionLevel(lvl CompressionLevel) (result int) {
	result = zstd.DefaultCompression
	switch lvl {
	case COMPRESSION_LEVEL_FAST:
		result = zstd.BestSpeed
	case COMPRESSION_LEVEL_BALANCED:
		result = zstd.DefaultCompression
	case COMPRESSION_LEVEL_BEST:
		result = zstd.BestCompression
	}
	return
}

func NewZStdReader(reader io.Reader) CompressedReader {
	return zstd.NewReader(reader)
}
func NewZStdWriter(writer io.Writer, lvl CompressionLevel) CompressedWriter {
	result := zstd.NewWriterLevel(writer, getZStdCompressionLevel(lvl))
	result.SetNbWorkers(1)
	return result
}

/***************************************
 * CompressionLevel
 ***************************************/

type CompressionLevel int32

const (
	COMPRESSION_LEVEL_INHERIT CompressionLevel = iota
	COMPRESSION_LEVEL_FAST
	COMPRESSION_LEVEL_BALANCED
	COMPRESSION_LEVEL_BEST
)

func CompressionLevels() []CompressionLevel {
	return []CompressionLevel{
		COMPRESSION_LEVEL_INHERIT,
		COMPRESSION_LEVEL_FAST,
		COMPRESSION_LEVEL_BALANCED,
		COMPRESSION_LEVEL_BEST,
	}
}
func (x CompressionLevel) Description() string {
	switch x {
	case COMPRESSION_LEVEL_INHERIT:
		return "inherit default value"
	case COMPRESSION_LEVEL_FAST:
		return "faster compression times with lower compression ratio"
	case COMPRESSION_LEVEL_BALANCED:
		return "balance between times ratio and compression ratio"
	case COMPRESSION_LEVEL_BEST:
		return "best compression ratio possible, but much slower compression times"
	default:
		UnexpectedValue(x)
		return ""
	}
}
func (x CompressionLevel) String() string {
	switch x {
	case COMPRESSION_LEVEL_INHERIT:
		return "INHERIT"
	case COMPRESSION_LEVEL_FAST:
		return "FAST"
	case COMPRESSION_LEVEL_BALANCED:
		return "BALANCED"
	case COMPRESSION_LEVEL_BEST:
		return "BEST"
	default:
		UnexpectedValue(x)
		return ""
	}
}
func (x CompressionLevel) IsInheritable() bool {
	return x == COMPRESSION_LEVEL_INHERIT
}
func (x *CompressionLevel) Set(in string) (err error) {
	switch strings.ToUpper(in) {
	case COMPRESSION_LEVEL_INHERIT.String():
		*x = COMPRESSION_LEVEL_INHERIT
	case COMPRESSION_LEVEL_FAST.String():
		*x = COMPRESSION_LEVEL_FAST
	case COMPRESSION_LEVEL_BALANCED.String():
		*x = COMPRESSION_LEVEL_BALANCED
	case COMPRESSION_LEVEL_BEST.String():
		*x = COMPRESSION_LEVEL_BEST
	default:
		err = MakeUnexpectedValueError(x, in)
	}
	return err
}
func (x CompressionLevel) Type() string { return "CompressionLevel" }
func (x CompressionLevel) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}
func (x *CompressionLevel) UnmarshalText(data []byte) error {
	return x.Set(string(data))
}

/***************************************
 * CompressionFormat
 ***************************************/

type CompressionFormat int32

const (
	COMPRESSION_FORMAT_INHERIT CompressionFormat = iota
	COMPRESSION_FORMAT_LZ4
	COMPRESSION_FORMAT_ZSTD
)

func CompressionFormats() []CompressionFormat {
	return []CompressionFormat{
		COMPRESSION_FORMAT_INHERIT,
		COMPRESSION_FORMAT_LZ4,
		COMPRESSION_FORMAT_ZSTD,
	}
}
func (x CompressionFormat) Description() string {
	switch x {
	case COMPRESSION_FORMAT_INHERIT:
		return "inherit default value"
	case COMPRESSION_FORMAT_LZ4:
		return "use extremely fast LZ4 compression from https://github.com/lz4/lz4"
	case COMPRESSION_FORMAT_ZSTD:
		return "use facebook ZStandard compression from https://github.com/facebook/zstd"
	default:
		UnexpectedValue(x)
		return ""
	}
}
func (x CompressionFormat) String() string {
	switch x {
	case COMPRESSION_FORMAT_INHERIT:
		return "INHERIT"
	case COMPRESSION_FORMAT_LZ4:
		return "LZ4"
	case COMPRESSION_FORMAT_ZSTD:
		return "ZSTD"
	default:
		UnexpectedValue(x)
		return ""
	}
}
func (x CompressionFormat) IsInheritable() bool {
	return x == COMPRESSION_FORMAT_INHERIT
}
func (x *CompressionFormat) Set(in string) (err error) {
	switch strings.ToUpper(in) {
	case COMPRESSION_FORMAT_INHERIT.String():
		*x = COMPRESSION_FORMAT_INHERIT
	case COMPRESSION_FORMAT_LZ4.String():
		*x = COMPRESSION_FORMAT_LZ4
	case COMPRESSION_FORMAT_ZSTD.String():
		*x = COMPRESSION_FORMAT_ZSTD
	default:
		err = MakeUnexpectedValueError(x, in)
	}
	return err
}
func (x CompressionFormat) Type() string { return "CompressionFormat" }
func (x CompressionFormat) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}
func (x *CompressionFormat) UnmarshalText(data []byte) error {
	return x.Set(string(data))
}
