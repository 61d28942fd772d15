//go:build windows

package screen

import (
	"sync"

	"github.com/go-vgo/robotgo"

	"github.com/zoeyai/zoeylocator/internal/logger"
	"github.com/zoeyai/zoeylocator/pkg/target"
)

// Windows DPI Aware 进程中 robotgo.CaptureImg 始终返回物理像素，
// 而 GetScreenSize 和区域参数可能是逻辑坐标。
// 首次使用时对比全屏截图尺寸与 GetScreenSize 探测缩放比:
//
//	coordScale = 截图像素尺寸 / robotgo 坐标空间尺寸
var (
	scaleOnce    sync.Once
	cachedScaleX float64 = 1
	cachedScaleY float64 = 1
)

func coordinateScale() (float64, float64) {
	scaleOnce.Do(func() {
		rw, rh := robotgo.GetScreenSize()
		if rw <= 0 || rh <= 0 {
			return
		}
		img, err := robotgo.CaptureImg()
		if err != nil || img == nil {
			logger.Warn("探测坐标缩放失败: %v", err)
			return
		}
		b := img.Bounds()
		cachedScaleX = normalizeScale(float64(b.Dx()) / float64(rw))
		cachedScaleY = normalizeScale(float64(b.Dy()) / float64(rh))
		logger.Debug("robotgo_screen=%dx%d capture=%dx%d coordScale=%.3f", rw, rh, b.Dx(), b.Dy(), cachedScaleX)
	})
	return cachedScaleX, cachedScaleY
}

// regionForInput 截图物理区域转换为 robotgo 区域
func regionForInput(r target.Region) (int, int, int, int) {
	sx, sy := coordinateScale()
	w := scaleInt(r.Width, 1/sx)
	h := scaleInt(r.Height, 1/sy)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return scaleInt(r.Left, 1/sx), scaleInt(r.Top, 1/sy), w, h
}

func physicalScreenSize() (int, int) {
	w, h := robotgo.GetScreenSize()
	sx, sy := coordinateScale()
	return scaleInt(w, sx), scaleInt(h, sy)
}
