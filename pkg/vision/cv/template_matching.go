package cv

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"

	"github.com/zoeyai/zoeylocator/internal/logger"
	"github.com/zoeyai/zoeylocator/pkg/target"
)

// Thresholds 匹配阈值，Icon/Text 分别用于图标类和文字类模板
type Thresholds struct {
	// Raw 灰度相似度下限
	Raw float64
	// FallbackRaw 低边缘回退匹配的灰度相似度下限
	FallbackRaw float64
	// AmbiguityGap 前两名得分差小于该值视为歧义
	AmbiguityGap float64
	// CannyLow / CannyHigh Canny 双阈值
	CannyLow  float32
	CannyHigh float32

	IconEdge          float64
	TextEdge          float64
	IconDistance      float64
	TextDistance      float64
	IconFallbackRatio float64
	TextFallbackRatio float64
}

// DefaultThresholds 默认阈值
func DefaultThresholds() Thresholds {
	return Thresholds{
		Raw:               0.8,
		FallbackRaw:       0.9,
		AmbiguityGap:      0.1,
		CannyLow:          100,
		CannyHigh:         200,
		IconEdge:          0.5,
		TextEdge:          0.3,
		IconDistance:      10,
		TextDistance:      20,
		IconFallbackRatio: 0.05,
		TextFallbackRatio: 0.1,
	}
}

// tuned 按模板类型选择的阈值
type tuned struct {
	edge          float64
	distance      float64
	fallbackRatio float64
}

func (t Thresholds) forShape(textLike bool) tuned {
	if textLike {
		return tuned{edge: t.TextEdge, distance: t.TextDistance, fallbackRatio: t.TextFallbackRatio}
	}
	return tuned{edge: t.IconEdge, distance: t.IconDistance, fallbackRatio: t.IconFallbackRatio}
}

// Matcher 模板匹配器，无状态，可并发使用
type Matcher struct {
	thresholds Thresholds
	methods    []Method
	log        *logger.Logger
}

// MatcherOption 匹配器选项
type MatcherOption func(*Matcher)

// WithThresholds 设置全部阈值
func WithThresholds(t Thresholds) MatcherOption {
	return func(m *Matcher) {
		m.thresholds = t
	}
}

// WithRawThreshold 设置灰度相似度下限
func WithRawThreshold(v float64) MatcherOption {
	return func(m *Matcher) {
		m.thresholds.Raw = v
	}
}

// WithMethods 设置参与评分的方法
func WithMethods(methods ...Method) MatcherOption {
	return func(m *Matcher) {
		m.methods = methods
	}
}

// WithLogger 设置日志
func WithLogger(l *logger.Logger) MatcherOption {
	return func(m *Matcher) {
		m.log = l
	}
}

// NewMatcher 创建模板匹配器
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{
		thresholds: DefaultThresholds(),
		methods:    DefaultMethods,
		log:        logger.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Thresholds 当前阈值
func (m *Matcher) Thresholds() Thresholds {
	return m.thresholds
}

var defaultMatcher = NewMatcher()

// ResolveTemplate 使用默认匹配器在截图中定位模板，返回中心点屏幕坐标
func ResolveTemplate(tmpl *Template, capture *target.Capture, xOffset, yOffset int) (target.Point, error) {
	return defaultMatcher.Resolve(tmpl, capture, xOffset, yOffset)
}

// Resolve 在截图中定位模板，返回中心点屏幕坐标
func (m *Matcher) Resolve(tmpl *Template, capture *target.Capture, xOffset, yOffset int) (target.Point, error) {
	result, err := m.Match(tmpl, capture, xOffset, yOffset)
	if err != nil {
		return target.Point{}, err
	}
	return result.Point, nil
}

// Match 在截图中定位模板，返回完整匹配结果
//
// 所有匹配失败都以 *target.NotFoundError 返回；截图或模板数据损坏以 *target.CollaboratorError 返回。
func (m *Matcher) Match(tmpl *Template, capture *target.Capture, xOffset, yOffset int) (*MatchResult, error) {
	if tmpl == nil || tmpl.Width <= 0 || tmpl.Height <= 0 {
		return nil, target.NotFound(target.ReasonNoConfidentMatch, "模板为空")
	}
	if capture == nil {
		return nil, target.Collaborator("截图", fmt.Errorf("截图为空"))
	}

	// 掩码只与模板有关，先于尺寸检查
	if err := tmpl.validateMask(); err != nil {
		m.log.Debug("%s: %v", tmpl, err)
		return nil, err
	}
	if tmpl.Width > capture.Width || tmpl.Height > capture.Height {
		m.log.Debug("模板 %dx%d 大于截图 %dx%d", tmpl.Width, tmpl.Height, capture.Width, capture.Height)
		return nil, target.NotFound(target.ReasonTemplateTooLarge,
			"模板 %dx%d, 截图 %dx%d", tmpl.Width, tmpl.Height, capture.Width, capture.Height)
	}

	screenBGR, err := CaptureToMat(capture)
	if err != nil {
		return nil, target.Collaborator("截图转换", err)
	}
	defer screenBGR.Close()

	tmplBGR, err := bgrToMat(tmpl.Pix, tmpl.Width, tmpl.Height)
	if err != nil {
		return nil, target.Collaborator("模板转换", err)
	}
	defer tmplBGR.Close()

	mask := gocv.NewMat()
	defer mask.Close()
	if tmpl.HasMask() {
		ref, err := gocv.NewMatFromBytes(tmpl.Height, tmpl.Width, gocv.MatTypeCV8UC1, tmpl.Mask)
		if err != nil {
			return nil, target.Collaborator("掩码转换", err)
		}
		ref.CopyTo(&mask)
		ref.Close()
	}

	th := m.thresholds
	screenGray, screenEdges := grayEdges(screenBGR, th.CannyLow, th.CannyHigh)
	defer screenGray.Close()
	defer screenEdges.Close()
	tmplGray, tmplEdges := grayEdges(tmplBGR, th.CannyLow, th.CannyHigh)
	defer tmplGray.Close()
	defer tmplEdges.Close()

	w, h := tmpl.Width, tmpl.Height
	edgeDensity := float64(gocv.CountNonZero(tmplEdges)) / float64(w*h)
	textLike := tmpl.TextLike()
	tune := th.forShape(textLike)
	m.log.Debug("%s 边缘占比 %.3f, 类型 %s", tmpl, edgeDensity, shapeName(textLike))

	var valid, fallback []MatchCandidate
	for _, method := range m.methods {
		rawPeaks, err := matchPeaks(screenGray, tmplGray, mask, method, w, h)
		if err != nil {
			m.log.Debug("%s 灰度匹配失败: %v", method.Name, err)
			continue
		}
		// 边缘图没有区分度时不做边缘印证，只保留回退匹配的可能
		edgePeaks, err := matchPeaks(screenEdges, tmplEdges, mask, method, w, h)
		if errors.Is(err, errFlatResult) {
			m.log.Debug("%s 边缘匹配没有区分度，仅允许回退匹配", method.Name)
			edgePeaks = nil
		} else if err != nil {
			m.log.Debug("%s 边缘匹配失败: %v", method.Name, err)
			continue
		}
		if !finite(rawPeaks[0].score) || (edgePeaks != nil && !finite(edgePeaks[0].score)) {
			m.log.Debug("%s 得分无效，跳过", method.Name)
			continue
		}

		for _, rp := range rawPeaks {
			ep, dist := peak{loc: rp.loc}, math.Inf(1)
			if edgePeaks != nil {
				ep, dist = nearestPeak(edgePeaks, rp.loc)
			}
			c := MatchCandidate{
				Confidence:     rp.score,
				EdgeConfidence: ep.score,
				Location:       rp.loc,
				Method:         method.Name,
			}
			m.log.Debug("%s: val=%.3f, edge_val=%.3f, loc=%v, edge_loc=%v", method.Name, rp.score, ep.score, rp.loc, ep.loc)

			switch {
			case rp.score > th.Raw && ep.score > tune.edge:
				if dist < tune.distance {
					valid = append(valid, c)
				}
			case rp.score > th.FallbackRaw && edgeDensity < tune.fallbackRatio:
				c.Fallback = true
				fallback = append(fallback, c)
			}
		}
	}

	candidates := valid
	if len(candidates) == 0 {
		if len(fallback) == 0 {
			m.log.Debug("%s 没有置信度 > %.2f 的有效匹配", tmpl, th.Raw)
			return nil, target.NotFound(target.ReasonNoConfidentMatch, "%s", tmpl)
		}
		m.log.Debug("%s 边缘信息不足，使用回退匹配", tmpl)
		candidates = fallback
	}

	clusters := clusterCandidates(candidates, tune.distance)
	best := clusters[0]
	if len(clusters) > 1 && best.Confidence-clusters[1].Confidence < th.AmbiguityGap {
		second := clusters[1]
		m.log.Debug("多个高置信匹配: %.3f@%v (edge %.3f) 与 %.3f@%v (edge %.3f)，拒绝返回",
			best.Confidence, best.Location, best.EdgeConfidence,
			second.Confidence, second.Location, second.EdgeConfidence)
		return nil, target.NotFound(target.ReasonAmbiguousMatch,
			"%.3f@%v 与 %.3f@%v", best.Confidence, best.Location, second.Confidence, second.Location)
	}

	cx, cy := target.Center(best.Location.X, best.Location.Y, w, h)
	point := target.NewTransform(capture.Region, capture.PixelScale(), xOffset, yOffset).Apply(cx, cy)
	m.log.Debug("找到 %s: 方法 %s, 置信度 %.3f (edge %.3f), 坐标 %v",
		tmpl, best.Method, best.Confidence, best.EdgeConfidence, point)

	return &MatchResult{
		Point:          point,
		MatchCandidate: best,
		TextLike:       textLike,
		EdgeDensity:    edgeDensity,
	}, nil
}

// matchPeaks 执行一次 MatchTemplate 并提取最多两个互不重叠的峰值
func matchPeaks(img, templ, mask gocv.Mat, method Method, w, h int) ([]peak, error) {
	result := gocv.NewMat()
	defer result.Close()

	gocv.MatchTemplate(img, templ, &result, method.Mode, mask)
	if result.Empty() {
		return nil, fmt.Errorf("匹配结果为空")
	}
	return findPeaks(result, method, w, h, 2)
}

// clusterCandidates 合并位置相近的候选，每组保留得分最高者，按得分降序返回
func clusterCandidates(candidates []MatchCandidate, tolerance float64) []MatchCandidate {
	sorted := make([]MatchCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	var clusters []MatchCandidate
	for _, c := range sorted {
		merged := false
		for _, head := range clusters {
			if distance(head.Location, c.Location) < tolerance {
				merged = true
				break
			}
		}
		if !merged {
			clusters = append(clusters, c)
		}
	}
	return clusters
}

func distance(a, b image.Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func shapeName(textLike bool) string {
	if textLike {
		return "text-like"
	}
	return "icon-like"
}
