// Package locate 组合截图、模板匹配、OCR 和稳定性采样，提供屏幕目标定位
//
// 基本用法:
//
//	engine := locate.New(screen.NewRobotgoCapturer(), recognizer)
//
//	// 查找图片，等待结果稳定
//	pos, err := engine.FindImage(ctx, "img/submit.png", locate.WithTimeout(3*time.Second))
//
//	// 查找文字
//	pos, err = engine.FindText(ctx, "登录", locate.WithRegion(0, 0, 800, 600))
//	if errors.Is(err, target.ErrNoOcrMatch) {
//	    ...
//	}
package locate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zoeyai/zoeylocator/internal/logger"
	"github.com/zoeyai/zoeylocator/pkg/stability"
	"github.com/zoeyai/zoeylocator/pkg/target"
	"github.com/zoeyai/zoeylocator/pkg/vision/cv"
	"github.com/zoeyai/zoeylocator/pkg/vision/ocr"
)

// Engine 屏幕目标定位引擎
// 截图器和 OCR 引擎在创建时传入，recognizer 可以为 nil（文字定位返回协作方错误）
type Engine struct {
	capturer   target.Capturer
	recognizer ocr.Recognizer
	matcher    *cv.Matcher
	log        *logger.Logger
}

// EngineOption 引擎选项
type EngineOption func(*Engine)

// WithMatcher 设置模板匹配器
func WithMatcher(m *cv.Matcher) EngineOption {
	return func(e *Engine) {
		e.matcher = m
	}
}

// WithLogger 设置日志
func WithLogger(l *logger.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// New 创建定位引擎
func New(capturer target.Capturer, recognizer ocr.Recognizer, opts ...EngineOption) *Engine {
	e := &Engine{
		capturer:   capturer,
		recognizer: recognizer,
		log:        logger.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.matcher == nil {
		e.matcher = cv.NewMatcher(cv.WithLogger(e.log))
	}
	return e
}

// Capturer 截图器
func (e *Engine) Capturer() target.Capturer {
	return e.capturer
}

// FindTemplate 查找模板，返回中心点屏幕坐标
func (e *Engine) FindTemplate(ctx context.Context, tmpl *cv.Template, opts ...Option) (target.Point, error) {
	o := ApplyOptions(opts...)
	log := e.request()
	start := time.Now()

	match := func(ctx context.Context, c *target.Capture) (target.Point, error) {
		return e.matcher.Resolve(tmpl, c, o.Offset.X, o.Offset.Y)
	}
	p, err := o.sampler(e.capturer, stability.WithLogger(log)).Resolve(ctx, match, o.Timeout)

	name := "Template(nil)"
	if tmpl != nil {
		name = tmpl.String()
	}
	log.LogEvent("TPL", err == nil, time.Since(start), outcome(name, p, err))
	return p, err
}

// FindImage 加载图片文件并查找
func (e *Engine) FindImage(ctx context.Context, path string, opts ...Option) (target.Point, error) {
	tmpl, err := cv.LoadTemplate(path)
	if err != nil {
		return target.Point{}, target.Collaborator("加载模板", err)
	}
	return e.FindTemplate(ctx, tmpl, opts...)
}

// FindImageData 从内存中的图片数据（PNG/JPEG 等）解码模板并查找
func (e *Engine) FindImageData(ctx context.Context, data []byte, opts ...Option) (target.Point, error) {
	tmpl, err := cv.DecodeTemplate(data)
	if err != nil {
		return target.Point{}, target.Collaborator("解码模板", err)
	}
	return e.FindTemplate(ctx, tmpl, opts...)
}

// ImageExists 图片是否出现在屏幕上
// 未找到返回 false, nil；加载或截图失败返回错误
func (e *Engine) ImageExists(ctx context.Context, path string, opts ...Option) (bool, error) {
	_, err := e.FindImage(ctx, path, opts...)
	return exists(err)
}

// FindText 查找文字，返回中心点屏幕坐标
func (e *Engine) FindText(ctx context.Context, text string, opts ...Option) (target.Point, error) {
	o := ApplyOptions(opts...)
	log := e.request()
	start := time.Now()

	if e.recognizer == nil {
		err := target.Collaborator("OCR", fmt.Errorf("未配置 OCR 引擎"))
		log.LogEvent("OCR", false, time.Since(start), err.Error())
		return target.Point{}, err
	}

	matcher := ocr.NewTextMatcher(log)
	match := func(ctx context.Context, c *target.Capture) (target.Point, error) {
		res, err := ocr.RecognizeCapture(e.recognizer, c, o.Scale)
		if err != nil {
			return target.Point{}, err
		}
		return matcher.Resolve(res, text, res.Scale, o.Offset.X, o.Offset.Y)
	}
	p, err := o.sampler(e.capturer, stability.WithLogger(log)).Resolve(ctx, match, o.Timeout)

	log.LogEvent("OCR", err == nil, time.Since(start), outcome(fmt.Sprintf("%q", text), p, err))
	return p, err
}

// TextExists 文字是否出现在屏幕上
func (e *Engine) TextExists(ctx context.Context, text string, opts ...Option) (bool, error) {
	_, err := e.FindText(ctx, text, opts...)
	return exists(err)
}

// Locate 按目标类型分派: 图片路径走模板匹配，其余按文字查找
func (e *Engine) Locate(ctx context.Context, what string, opts ...Option) (target.Point, error) {
	if cv.IsTemplatePath(what) {
		return e.FindImage(ctx, what, opts...)
	}
	return e.FindText(ctx, what, opts...)
}

// WaitForText 等待文字出现（拼接所有识别片段后包含即可，不要求位置稳定）
// 默认超时 5 秒、间隔 100 毫秒；WithTimeout(0) 只识别一次。超时返回 false, nil
func (e *Engine) WaitForText(ctx context.Context, text string, opts ...Option) (bool, error) {
	o := ApplyOptions(append(waitDefaults(), opts...)...)
	log := e.request()
	start := time.Now()

	if e.recognizer == nil {
		return false, target.Collaborator("OCR", fmt.Errorf("未配置 OCR 引擎"))
	}

	match := func(ctx context.Context, c *target.Capture) (target.Point, error) {
		res, err := ocr.RecognizeCapture(e.recognizer, c, o.Scale)
		if err != nil {
			return target.Point{}, err
		}
		if !ocr.Contains(res, text) {
			return target.Point{}, target.NotFound(target.ReasonNoOcrMatch, "%q", text)
		}
		return target.Point{}, nil
	}

	_, err := o.sampler(e.capturer, stability.WithRequired(1), stability.WithLogger(log)).Resolve(ctx, match, o.Timeout)
	found, err := exists(err)

	log.LogEvent("WAIT", found, time.Since(start), fmt.Sprintf("等待文字 %q", text))
	return found, err
}

// WaitForChange 截取基准画面后等待画面变化
// 默认超时 5 秒、间隔 100 毫秒；超时未变化返回 false, nil
func (e *Engine) WaitForChange(ctx context.Context, opts ...Option) (bool, error) {
	o := ApplyOptions(append(waitDefaults(), opts...)...)
	log := e.request()
	start := time.Now()

	if e.capturer == nil {
		return false, target.Collaborator("截图", fmt.Errorf("未配置截图器"))
	}
	baseline, err := e.capturer.Capture(o.Region)
	if err != nil {
		return false, target.Collaborator("截图", err)
	}

	changed, err := stability.WaitForChange(ctx, e.capturer, baseline, o.Timeout, o.Interval)
	log.LogEvent("DIFF", changed, time.Since(start), fmt.Sprintf("画面变化=%v", changed))
	return changed, err
}

// request 每次调用使用带请求 ID 的子 logger
func (e *Engine) request() *logger.Logger {
	return e.log.With(uuid.NewString()[:8])
}

// exists 未找到类结果视为 false，其余错误原样返回
func exists(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	var nf *target.NotFoundError
	if errors.As(err, &nf) {
		return false, nil
	}
	return false, err
}

func outcome(what string, p target.Point, err error) string {
	if err != nil {
		return fmt.Sprintf("%s: %s (%v)", what, target.ReasonOf(err), err)
	}
	return fmt.Sprintf("%s at %v", what, p)
}
