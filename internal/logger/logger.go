// Package logger 提供统一的日志工具
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Level 日志级别
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel 解析日志级别字符串
func ParseLevel(s string) Level {
	switch s {
	case "DEBUG", "debug":
		return DEBUG
	case "INFO", "info":
		return INFO
	case "WARN", "warn", "WARNING", "warning":
		return WARN
	case "ERROR", "error":
		return ERROR
	default:
		return INFO
	}
}

// sink 日志输出目标，子 logger 共享同一个 sink
type sink struct {
	mu      sync.Mutex
	level   Level
	console io.Writer
	fileOut *os.File
	out     *log.Logger
}

func (s *sink) rebuild() {
	var writers []io.Writer
	if s.console != nil {
		writers = append(writers, s.console)
	}
	if s.fileOut != nil {
		writers = append(writers, s.fileOut)
	}

	switch len(writers) {
	case 0:
		s.out.SetOutput(io.Discard)
	case 1:
		s.out.SetOutput(writers[0])
	default:
		s.out.SetOutput(io.MultiWriter(writers...))
	}
}

// Logger 日志记录器
type Logger struct {
	sink   *sink
	prefix string
}

// 全局默认 logger
var defaultLogger = New()

// New 创建新的 Logger 实例，默认 INFO 级别输出到控制台
func New() *Logger {
	return &Logger{
		sink: &sink{
			level:   INFO,
			console: os.Stdout,
			out:     log.New(os.Stdout, "", 0),
		},
	}
}

// Default 获取默认 logger
func Default() *Logger {
	return defaultLogger
}

// With 返回带前缀的子 logger（例如请求 ID），与父 logger 共享级别和输出
func (l *Logger) With(prefix string) *Logger {
	p := prefix
	if l.prefix != "" {
		p = l.prefix + " " + prefix
	}
	return &Logger{sink: l.sink, prefix: p}
}

// SetLevel 设置日志级别
func (l *Logger) SetLevel(level Level) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// Level 当前日志级别
func (l *Logger) Level() Level {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

// SetOutput 设置控制台输出，nil 表示关闭控制台输出
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.console = w
	l.sink.rebuild()
}

// SetFile 设置日志文件，path 为空时关闭文件输出
func (l *Logger) SetFile(path string) error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.fileOut != nil {
		l.sink.fileOut.Close()
		l.sink.fileOut = nil
	}

	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("无法打开日志文件: %w", err)
		}
		l.sink.fileOut = f
	}

	l.sink.rebuild()
	return nil
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if level < l.sink.level {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		msg = "[" + l.prefix + "] " + msg
	}
	l.sink.out.Printf("%s | %-5s | %s", time.Now().Format("15:04:05.000"), level.String(), msg)
}

// Debug 输出 DEBUG 级别日志
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info 输出 INFO 级别日志
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Warn 输出 WARN 级别日志
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error 输出 ERROR 级别日志
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

// LogEvent 记录一次定位事件: 类别、是否成功、耗时、详情
// 失败事件按 WARN 输出，未找到目标属于正常结果
func (l *Logger) LogEvent(category string, ok bool, elapsed time.Duration, detail string) {
	ms := float64(elapsed.Microseconds()) / 1000
	if ok {
		l.Info("%-4s | OK | %7.1fms | %s", category, ms, detail)
	} else {
		l.Warn("%-4s | NG | %7.1fms | %s", category, ms, detail)
	}
}

// Close 关闭日志文件
func (l *Logger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.fileOut != nil {
		err := l.sink.fileOut.Close()
		l.sink.fileOut = nil
		l.sink.rebuild()
		return err
	}
	return nil
}

// 包级别便捷函数
func Debug(format string, args ...interface{}) { defaultLogger.Debug(format, args...) }
func Info(format string, args ...interface{})  { defaultLogger.Info(format, args...) }
func Warn(format string, args ...interface{})  { defaultLogger.Warn(format, args...) }
func Error(format string, args ...interface{}) { defaultLogger.Error(format, args...) }
func LogEvent(category string, ok bool, elapsed time.Duration, detail string) {
	defaultLogger.LogEvent(category, ok, elapsed, detail)
}
