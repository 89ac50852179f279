package base

import (
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

/***************************************
 * Logger API
 ***************************************/

var LogGlobal = NewLogCategory("Global")

var gLogger Logger = NewLogger()

func LogDebug(category *LogCategory, msg string, args ...interface{}) {
	gLogger.Log(category, LOG_DEBUG, msg, args...)
}
func LogTrace(category *LogCategory, msg string, args ...interface{}) {
	gLogger.Log(category, LOG_TRACE, msg, args...)
}
func LogVeryVerbose(category *LogCategory, msg string, args ...interface{}) {
	gLogger.Log(category, LOG_VERYVERBOSE, msg, args...)
}
func LogVerbose(category *LogCategory, msg string, args ...interface{}) {
	gLogger.Log(category, LOG_VERBOSE, msg, args...)
}
func LogInfo(category *LogCategory, msg string, args ...interface{}) {
	gLogger.Log(category, LOG_INFO, msg, args...)
}
func LogClaim(category *LogCategory, msg string, args ...interface{}) {
	gLogger.Log(category, LOG_CLAIM, msg, args...)
}

func LogWarning(category *LogCategory, msg string, args ...interface{}) {
	gLogger.Log(category, LOG_WARNING, msg, args...)
}
func LogWarningVerbose(category *LogCategory, msg string, args ...interface{}) {
	if IsLogLevelActive(LOG_VERBOSE) {
		LogWarning(category, msg, args...)
	}
}

func LogError(category *LogCategory, msg string, args ...interface{}) {
	gLogger.Log(category, LOG_ERROR, msg, args...)
}

func LogPanic(category *LogCategory, msg string, args ...interface{}) {
	LogPanicErr(category, fmt.Errorf(msg, args...))
}
func LogPanicErr(category *LogCategory, err error) {
	LogError(category, "💀 panic: caught error %v", err)
	FlushLog()
	Panic(err)
}
func LogPanicIfFailed(category *LogCategory, err error) {
	if err != nil {
		LogPanicErr(category, err)
	}
}

// LogForwardln writes raw lines, like the output of a child process.
func LogForwardln(msg ...string) {
	gLogger.Forwardln(msg...)
}

func IsLogLevelActive(level LogLevel) bool {
	return gLogger.IsVisible(level)
}
func FlushLog() {
	gLogger.Flush()
}

func SetLogVisibleLevel(level LogLevel) {
	gLogger.SetLevel(level)
}

/***************************************
 * Logger interface
 ***************************************/

type LogCategory struct {
	Name  string
	Color AnsiCode
}

type Logger interface {
	IsVisible(LogLevel) bool
	SetLevel(LogLevel) LogLevel

	Forwardln(msg ...string)

	Log(category *LogCategory, level LogLevel, msg string, args ...interface{})

	Flush()
}

/***************************************
 * Errors
 ***************************************/

func MakeUnexpectedValueError(dst interface{}, any interface{}) error {
	return fmt.Errorf("unexpected <%T> value: %#v", dst, any)
}
func UnexpectedValuePanic(dst interface{}, any interface{}) {
	LogPanicErr(LogGlobal, MakeUnexpectedValueError(dst, any))
}

/***************************************
 * Log Manager
 ***************************************/

type LogManager struct {
	barrierRW  sync.RWMutex
	categories map[string]*LogCategory
}

var gLogManager = LogManager{
	categories: make(map[string]*LogCategory, 32),
}

func (x *LogManager) FindOrAddCategory(name string) *LogCategory {
	x.barrierRW.RLock()
	result, ok := x.categories[name]
	x.barrierRW.RUnlock()
	if ok {
		return result
	}

	x.barrierRW.Lock()
	defer x.barrierRW.Unlock()
	if result, ok = x.categories[name]; !ok {
		result = makeLogCategory(name)
		x.categories[name] = result
	}
	return result
}

/***************************************
 * Log Category
 ***************************************/

var logCategoryColors = []AnsiCode{
	ANSI_FG1_BLUE,
	ANSI_FG1_CYAN,
	ANSI_FG1_GREEN,
	ANSI_FG1_MAGENTA,
	ANSI_FG1_YELLOW,
	ANSI_FG0_BLUE,
	ANSI_FG0_CYAN,
	ANSI_FG0_MAGENTA,
}

// the color only depends on the name, so a category looks the same between runs
func makeLogCategory(name string) *LogCategory {
	sum64a := fnv.New64a()
	sum64a.Write([]byte(name))
	return &LogCategory{
		Name:  name,
		Color: logCategoryColors[sum64a.Sum64()%uint64(len(logCategoryColors))],
	}
}

func NewLogCategory(name string) *LogCategory {
	return gLogManager.FindOrAddCategory(name)
}

/***************************************
 * Log level
 ***************************************/

type LogLevel int32

const (
	LOG_ALL LogLevel = iota
	LOG_DEBUG
	LOG_TRACE
	LOG_VERYVERBOSE
	LOG_VERBOSE
	LOG_INFO
	LOG_CLAIM
	LOG_WARNING
	LOG_ERROR
	LOG_FATAL
)

func (x LogLevel) IsVisible(level LogLevel) bool {
	return (int32(level) >= int32(x))
}
func (x LogLevel) Style(dst io.Writer) {
	switch x {
	case LOG_DEBUG:
		fmt.Fprint(dst, ANSI_FG0_MAGENTA, ANSI_ITALIC, ANSI_FAINT)
	case LOG_TRACE:
		fmt.Fprint(dst, ANSI_FG0_CYAN, ANSI_ITALIC, ANSI_FAINT)
	case LOG_VERYVERBOSE:
		fmt.Fprint(dst, ANSI_FG1_MAGENTA, ANSI_ITALIC)
	case LOG_VERBOSE:
		fmt.Fprint(dst, ANSI_FG0_BLUE)
	case LOG_INFO:
		fmt.Fprint(dst, ANSI_FG1_WHITE)
	case LOG_CLAIM:
		fmt.Fprint(dst, ANSI_FG1_GREEN, ANSI_BOLD)
	case LOG_WARNING:
		fmt.Fprint(dst, ANSI_FG0_YELLOW)
	case LOG_ERROR:
		fmt.Fprint(dst, ANSI_FG1_RED, ANSI_BOLD)
	case LOG_FATAL:
		fmt.Fprint(dst, ANSI_FG1_WHITE, ANSI_BG0_RED)
	default:
		UnexpectedValue(x)
	}
}
func (x LogLevel) Header(dst io.Writer) {
	switch x {
	case LOG_DEBUG:
		fmt.Fprint(dst, "🐜 ")
	case LOG_TRACE:
		fmt.Fprint(dst, "👣 ")
	case LOG_VERYVERBOSE:
		fmt.Fprint(dst, "👥 ")
	case LOG_VERBOSE:
		fmt.Fprint(dst, "🗣️ ")
	case LOG_INFO:
		fmt.Fprint(dst, "🔹 ")
	case LOG_CLAIM:
		fmt.Fprint(dst, "❇️ ")
	case LOG_WARNING:
		fmt.Fprint(dst, "⚠️ ")
	case LOG_ERROR:
		fmt.Fprint(dst, "❌ ")
	case LOG_FATAL:
		fmt.Fprint(dst, "💀 ")
	default:
		UnexpectedValue(x)
	}
}
func (x LogLevel) String() string {
	switch x {
	case LOG_ALL:
		return "ALL"
	case LOG_DEBUG:
		return "DEBUG"
	case LOG_TRACE:
		return "TRACE"
	case LOG_VERYVERBOSE:
		return "VERYVERBOSE"
	case LOG_VERBOSE:
		return "VERBOSE"
	case LOG_INFO:
		return "INFO"
	case LOG_CLAIM:
		return "CLAIM"
	case LOG_WARNING:
		return "WARNING"
	case LOG_ERROR:
		return "ERROR"
	case LOG_FATAL:
		return "FATAL"
	default:
		UnexpectedValue(x)
		return ""
	}
}
func (x *LogLevel) Set(in string) error {
	for it := LOG_ALL; it <= LOG_FATAL; it++ {
		if strings.EqualFold(it.String(), in) {
			*x = it
			return nil
		}
	}
	return MakeUnexpectedValueError(x, in)
}

/***************************************
 * Basic Logger
 ***************************************/

type basicLogger struct {
	MinimumLevel LogLevel
	Writer       io.Writer

	barrier sync.Mutex
}

func NewLogger() Logger {
	level := LOG_INFO
	if EnableDiagnostics() {
		level = LOG_ALL
	}
	return &basicLogger{
		MinimumLevel: level,
		Writer:       os.Stdout,
	}
}

func (x *basicLogger) IsVisible(level LogLevel) bool {
	return x.MinimumLevel.IsVisible(level)
}

func (x *basicLogger) SetLevel(level LogLevel) LogLevel {
	previous := x.MinimumLevel
	if level < LOG_FATAL {
		x.MinimumLevel = level
	} else {
		x.MinimumLevel = LOG_FATAL
	}
	return previous
}

func (x *basicLogger) Forwardln(msg ...string) {
	if len(msg) == 0 {
		return
	}

	x.barrier.Lock()
	defer x.barrier.Unlock()
	for _, it := range msg {
		io.WriteString(x.Writer, it)
	}
	if !strings.HasSuffix(msg[len(msg)-1], "\n") {
		io.WriteString(x.Writer, "\n")
	}
}

func (x *basicLogger) Log(category *LogCategory, level LogLevel, msg string, args ...interface{}) {
	if !x.IsVisible(level) {
		return
	}

	x.barrier.Lock()
	defer x.barrier.Unlock()

	level.Style(x.Writer)
	level.Header(x.Writer)

	fmt.Fprintf(x.Writer, " %s%s%s%s: ", ANSI_RESET, category.Color, category.Name, ANSI_RESET)
	level.Style(x.Writer)

	fmt.Fprintf(x.Writer, msg, args...)
	fmt.Fprintln(x.Writer, ANSI_RESET.String())
}

func (x *basicLogger) Flush() {
	x.barrier.Lock()
	defer x.barrier.Unlock()
	if err := FlushWriterIFP(x.Writer); err != nil {
		panic(err)
	}
}

/***************************************
 * Logger helpers
 ***************************************/

type BenchmarkLog struct {
	category  *LogCategory
	message   string
	startedAt time.Duration
}

func (x BenchmarkLog) Close() time.Duration {
	duration := Elapsed() - x.startedAt
	LogVeryVerbose(x.category, "benchmark: %10v   %s", duration, x.message)
	return duration
}
func LogBenchmark(category *LogCategory, msg string, args ...interface{}) BenchmarkLog {
	formatted := fmt.Sprintf(msg, args...) // before measured scope
	return BenchmarkLog{
		category:  category,
		message:   formatted,
		startedAt: Elapsed(),
	}
}
