package cv

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
)

// peak 匹配结果矩阵中的一个峰值，score 已统一为越高越好
type peak struct {
	loc   image.Point
	score float64
}

// flatEpsilon 结果矩阵最大最小值之差低于该值视为没有区分度
const flatEpsilon = 1e-6

// errFlatResult 结果矩阵处处相等。纯色模板下 TM_CCOEFF_NORMED 会输出全 1，
// 全零边缘图在各方法下都是常数，此时任何位置都不能当作匹配
var errFlatResult = errors.New("匹配结果没有区分度")

// findPeaks 查找最多 n 个互不重叠的峰值
// 第一个峰值取 MinMaxLoc 结果；后续峰值跳过与已有峰值重叠（同一模板窗口内）的位置和非有限值
func findPeaks(result gocv.Mat, method Method, w, h, n int) ([]peak, error) {
	minVal, maxVal, minLoc, maxLoc := gocv.MinMaxLoc(result)
	if finite(float64(minVal)) && finite(float64(maxVal)) && float64(maxVal-minVal) < flatEpsilon {
		return nil, errFlatResult
	}
	best := peak{loc: maxLoc, score: method.similarity(maxVal)}
	if method.lowerIsBetter() {
		best = peak{loc: minLoc, score: method.similarity(minVal)}
	}

	peaks := []peak{best}
	if n <= 1 || !finite(best.score) {
		return peaks, nil
	}

	data, err := result.DataPtrFloat32()
	if err != nil {
		return peaks, nil
	}
	cols := result.Cols()

	for len(peaks) < n {
		var next peak
		found := false
		for i, v := range data {
			s := method.similarity(v)
			if !finite(s) || (found && s <= next.score) {
				continue
			}
			loc := image.Point{X: i % cols, Y: i / cols}
			if overlaps(loc, peaks, w, h) {
				continue
			}
			next = peak{loc: loc, score: s}
			found = true
		}
		if !found {
			break
		}
		peaks = append(peaks, next)
	}

	return peaks, nil
}

// overlaps 位置是否落在任一已有峰值的模板窗口内
func overlaps(loc image.Point, peaks []peak, w, h int) bool {
	for _, p := range peaks {
		if abs(loc.X-p.loc.X) < w && abs(loc.Y-p.loc.Y) < h {
			return true
		}
	}
	return false
}

// nearestPeak 返回距离 loc 最近的峰值及距离
func nearestPeak(peaks []peak, loc image.Point) (peak, float64) {
	best := peaks[0]
	bestDist := distance(best.loc, loc)
	for _, p := range peaks[1:] {
		if d := distance(p.loc, loc); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, bestDist
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
