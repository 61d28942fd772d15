package cv

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/zoeyai/zoeylocator/pkg/target"
)

// Method 模板匹配方法
type Method struct {
	Name string
	Mode gocv.TemplateMatchMode
}

// 参与评分的三种归一化方法
var (
	MethodSqdiffNormed = Method{Name: "TM_SQDIFF_NORMED", Mode: gocv.TmSqdiffNormed}
	MethodCcoeffNormed = Method{Name: "TM_CCOEFF_NORMED", Mode: gocv.TmCcoeffNormed}
	MethodCcorrNormed  = Method{Name: "TM_CCORR_NORMED", Mode: gocv.TmCcorrNormed}
)

// DefaultMethods 默认匹配方法列表
var DefaultMethods = []Method{
	MethodSqdiffNormed,
	MethodCcoeffNormed,
	MethodCcorrNormed,
}

// lowerIsBetter 平方差方法得分越低越好
func (m Method) lowerIsBetter() bool {
	return m.Mode == gocv.TmSqdiffNormed
}

// similarity 统一为越高越好
func (m Method) similarity(v float32) float64 {
	if m.lowerIsBetter() {
		return 1 - float64(v)
	}
	return float64(v)
}

// MatchCandidate 单个方法给出的候选位置
type MatchCandidate struct {
	// Confidence 灰度图相似度
	Confidence float64 `json:"confidence"`
	// EdgeConfidence 边缘图相似度
	EdgeConfidence float64 `json:"edge_confidence"`
	// Location 截图局部坐标中的左上角
	Location image.Point `json:"location"`
	// Method 匹配方法名
	Method string `json:"method"`
	// Fallback 是否为低边缘回退匹配
	Fallback bool `json:"fallback,omitempty"`
}

// MatchResult 模板定位结果
type MatchResult struct {
	// Point 目标中心的屏幕绝对坐标
	Point target.Point `json:"point"`
	// 最终采用的候选
	MatchCandidate
	// TextLike 模板是否按文字类处理
	TextLike bool `json:"text_like"`
	// EdgeDensity 模板边缘像素占比
	EdgeDensity float64 `json:"edge_density"`
}
