// Package stability 提供稳定性采样和屏幕变化等待
//
// Sampler 每次尝试都重新截图，只有连续两次匹配位置相差不超过容差时才返回结果，
// 用于过滤动画、光标闪烁等瞬时干扰。
package stability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zoeyai/zoeylocator/internal/logger"
	"github.com/zoeyai/zoeylocator/pkg/target"
)

// 默认参数
const (
	DefaultInterval  = 50 * time.Millisecond
	DefaultTolerance = 5
	DefaultRequired  = 2
)

// MatchFunc 在一次截图上执行一次定位
type MatchFunc func(ctx context.Context, capture *target.Capture) (target.Point, error)

// Option 采样器选项
type Option func(*Sampler)

// WithInterval 设置轮询间隔
func WithInterval(d time.Duration) Option {
	return func(s *Sampler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithTolerance 设置判定为同一位置的像素容差（两轴都小于该值）
func WithTolerance(px int) Option {
	return func(s *Sampler) {
		if px > 0 {
			s.tolerance = px
		}
	}
}

// WithRequired 设置需要的连续一致次数
func WithRequired(n int) Option {
	return func(s *Sampler) {
		if n > 0 {
			s.required = n
		}
	}
}

// WithRegion 设置截图区域，nil 表示全屏
func WithRegion(r *target.Region) Option {
	return func(s *Sampler) {
		s.region = r
	}
}

// WithLegacyMissPolicy 未匹配的帧不打断已累计的一致次数
func WithLegacyMissPolicy() Option {
	return func(s *Sampler) {
		s.resetOnMiss = false
	}
}

// WithLogger 设置日志
func WithLogger(l *logger.Logger) Option {
	return func(s *Sampler) {
		s.log = l
	}
}

// Sampler 稳定性采样器
// 自身不保存跨调用的状态，同一个 Sampler 可被多个 goroutine 使用（截图器需自行保证并发安全）
type Sampler struct {
	capturer    target.Capturer
	region      *target.Region
	interval    time.Duration
	tolerance   int
	required    int
	resetOnMiss bool
	log         *logger.Logger
}

// NewSampler 创建采样器
func NewSampler(capturer target.Capturer, opts ...Option) *Sampler {
	s := &Sampler{
		capturer:    capturer,
		interval:    DefaultInterval,
		tolerance:   DefaultTolerance,
		required:    DefaultRequired,
		resetOnMiss: true,
		log:         logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResetOnMiss 未匹配的帧是否清空候选
func (s *Sampler) ResetOnMiss() bool {
	return s.resetOnMiss
}

// state 一次 Resolve 的局部状态
type state struct {
	last       *target.Point
	agreements int
}

func (st *state) observe(p target.Point, tolerance int) {
	if st.last != nil && near(*st.last, p, tolerance) {
		st.agreements++
	} else {
		st.agreements = 1
	}
	st.last = &p
}

func (st *state) reset() {
	st.last = nil
	st.agreements = 0
}

// Resolve 反复截图并调用 match，直到结果稳定或超时
//
// deadline <= 0 时只尝试一次并直接返回结果。
// 截图或 match 返回协作方错误时立即返回，不再重试。
func (s *Sampler) Resolve(ctx context.Context, match MatchFunc, deadline time.Duration) (target.Point, error) {
	if err := ctx.Err(); err != nil {
		return target.Point{}, canceled(err)
	}

	if deadline <= 0 {
		capture, err := s.capture()
		if err != nil {
			return target.Point{}, err
		}
		return match(ctx, capture)
	}

	start := time.Now()
	end := start.Add(deadline)
	var st state
	var lastErr error

	for {
		capture, err := s.capture()
		if err != nil {
			return target.Point{}, err
		}

		p, err := match(ctx, capture)
		switch {
		case err == nil:
			st.observe(p, s.tolerance)
			if st.agreements >= s.required {
				s.log.Debug("结果稳定: %v, 耗时 %v", p, time.Since(start))
				return p, nil
			}
		case target.IsCollaboratorFailure(err):
			return target.Point{}, err
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return target.Point{}, canceled(err)
		default:
			lastErr = err
			if s.resetOnMiss {
				st.reset()
			}
		}

		if !time.Now().Before(end) {
			s.log.Debug("超时 (%v) 仍未得到稳定结果", deadline)
			if lastErr != nil {
				return target.Point{}, target.NotFound(target.ReasonTimeout, "%v 内未稳定, 最后一次: %v", deadline, lastErr)
			}
			return target.Point{}, target.NotFound(target.ReasonTimeout, "%v 内未稳定", deadline)
		}

		if err := sleep(ctx, s.interval); err != nil {
			return target.Point{}, canceled(err)
		}
	}
}

func (s *Sampler) capture() (*target.Capture, error) {
	if s.capturer == nil {
		return nil, target.Collaborator("截图", fmt.Errorf("未配置截图器"))
	}
	c, err := s.capturer.Capture(s.region)
	if err != nil {
		return nil, target.Collaborator("截图", err)
	}
	return c, nil
}

func near(a, b target.Point, tolerance int) bool {
	return abs(a.X-b.X) < tolerance && abs(a.Y-b.Y) < tolerance
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// sleep 等待 d 或 ctx 结束
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func canceled(err error) error {
	return fmt.Errorf("定位已取消: %w", err)
}
