package ocr

import (
	"strings"
	"unicode/utf8"

	"github.com/zoeyai/zoeylocator/internal/logger"
	"github.com/zoeyai/zoeylocator/pkg/target"
)

// MinPartialConfidence 部分匹配要求的最低置信度（不含）
const MinPartialConfidence = 40

// TextMatcher 文字定位，无状态，可并发使用
type TextMatcher struct {
	log *logger.Logger
}

// NewTextMatcher 创建文字定位器，l 为 nil 时使用默认 logger
func NewTextMatcher(l *logger.Logger) *TextMatcher {
	if l == nil {
		l = logger.Default()
	}
	return &TextMatcher{log: l}
}

// ResolveText 使用默认 logger 在识别结果中定位文字
func ResolveText(res *Result, targetText string, scaleFactor float64, xOffset, yOffset int) (target.Point, error) {
	return NewTextMatcher(nil).Resolve(res, targetText, scaleFactor, xOffset, yOffset)
}

// Resolve 在识别结果中定位文字，返回屏幕绝对坐标
//
// 先找去掉首尾空白后与目标完全一致的片段；找不到时再找包含目标且置信度 > 40 的片段，
// 按字符比例估算目标在片段中的位置。同一轮中先出现的片段优先。
// 片段坐标先除以 scaleFactor，再加上截图区域原点和偏移。
func (m *TextMatcher) Resolve(res *Result, targetText string, scaleFactor float64, xOffset, yOffset int) (target.Point, error) {
	targetText = strings.TrimSpace(targetText)
	if targetText == "" {
		return target.Point{}, target.NotFound(target.ReasonNoOcrMatch, "目标文字为空")
	}
	if res == nil {
		return target.Point{}, target.NotFound(target.ReasonNoOcrMatch, "%q: 没有识别结果", targetText)
	}

	m.log.Debug("查找文字: %s, 识别到: %s", targetText, JoinText(res))
	tr := target.NewTransform(res.Region, scaleFactor, xOffset, yOffset)

	for _, f := range res.Fragments {
		if f.Blank() || strings.TrimSpace(f.Text) != targetText {
			continue
		}
		cx := float64(f.Left) + float64(f.Width)/2
		cy := float64(f.Top) + float64(f.Height)/2
		p := tr.Apply(cx, cy)
		m.log.Debug("完全匹配 %q: 原始坐标 (%.1f, %.1f), 屏幕坐标 %v", f.Text, cx, cy, p)
		return p, nil
	}

	for _, f := range res.Fragments {
		if f.Blank() || f.Confidence <= MinPartialConfidence {
			continue
		}
		idx := strings.Index(f.Text, targetText)
		if idx < 0 {
			continue
		}

		length := float64(utf8.RuneCountInString(f.Text))
		start := float64(utf8.RuneCountInString(f.Text[:idx]))
		charWidth := float64(f.Width) / length
		targetWidth := float64(utf8.RuneCountInString(targetText)) * charWidth

		cx := float64(f.Left) + start*charWidth + targetWidth/2
		cy := float64(f.Top) + float64(f.Height)/2
		p := tr.Apply(cx, cy)
		m.log.Debug("部分匹配 %q 于 %q: 原始坐标 (%.1f, %.1f), 屏幕坐标 %v", targetText, f.Text, cx, cy, p)
		return p, nil
	}

	return target.Point{}, target.NotFound(target.ReasonNoOcrMatch, "%q", targetText)
}

// JoinText 拼接所有非空片段的文字
func JoinText(res *Result) string {
	if res == nil {
		return ""
	}
	var b strings.Builder
	for _, f := range res.Fragments {
		if !f.Blank() {
			b.WriteString(f.Text)
		}
	}
	return b.String()
}

// Contains 识别结果中是否出现目标文字
func Contains(res *Result, text string) bool {
	if text == "" {
		return false
	}
	return strings.Contains(JoinText(res), text)
}
