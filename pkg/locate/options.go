package locate

import (
	"time"

	"github.com/zoeyai/zoeylocator/pkg/stability"
	"github.com/zoeyai/zoeylocator/pkg/target"
	"github.com/zoeyai/zoeylocator/pkg/vision/ocr"
)

// 默认参数
const (
	DefaultTimeout      = 3 * time.Second
	DefaultWaitTimeout  = 5 * time.Second
	DefaultWaitInterval = 100 * time.Millisecond
)

// Option 配置选项函数类型
type Option func(*Options)

// Options 单次定位配置
type Options struct {
	// Timeout 等待结果稳定的最长时间，<= 0 表示只尝试一次
	Timeout time.Duration
	// Interval 轮询间隔
	Interval time.Duration
	// Offset 加到结果上的偏移量
	Offset target.Point
	// Region 截图区域 (nil 表示全屏)
	Region *target.Region
	// Scale OCR 前的放大倍数
	Scale float64
	// LegacyMissPolicy 未匹配的帧不打断稳定计数
	LegacyMissPolicy bool
}

// DefaultOptions 默认配置
func DefaultOptions() *Options {
	return &Options{
		Timeout:  DefaultTimeout,
		Interval: stability.DefaultInterval,
		Scale:    ocr.DefaultScale,
	}
}

// waitDefaults 等待类操作的默认值
func waitDefaults() []Option {
	return []Option{WithTimeout(DefaultWaitTimeout), WithInterval(DefaultWaitInterval)}
}

// ApplyOptions 应用配置选项
func ApplyOptions(opts ...Option) *Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithTimeout 设置超时时间
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithInterval 设置轮询间隔
func WithInterval(d time.Duration) Option {
	return func(o *Options) {
		o.Interval = d
	}
}

// WithOffset 设置结果偏移量
func WithOffset(x, y int) Option {
	return func(o *Options) {
		o.Offset = target.Point{X: x, Y: y}
	}
}

// WithRegion 设置搜索区域
func WithRegion(x, y, width, height int) Option {
	return func(o *Options) {
		o.Region = &target.Region{Left: x, Top: y, Width: width, Height: height}
	}
}

// WithScale 设置 OCR 放大倍数
func WithScale(scale float64) Option {
	return func(o *Options) {
		o.Scale = scale
	}
}

// WithLegacyMissPolicy 未匹配的帧不打断稳定计数
func WithLegacyMissPolicy() Option {
	return func(o *Options) {
		o.LegacyMissPolicy = true
	}
}

func (o *Options) sampler(capturer target.Capturer, extra ...stability.Option) *stability.Sampler {
	opts := []stability.Option{
		stability.WithInterval(o.Interval),
		stability.WithRegion(o.Region),
	}
	if o.LegacyMissPolicy {
		opts = append(opts, stability.WithLegacyMissPolicy())
	}
	return stability.NewSampler(capturer, append(opts, extra...)...)
}
