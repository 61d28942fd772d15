package cv

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/zoeyai/zoeylocator/pkg/target"
)

// ToGray 转换为灰度图
func ToGray(src gocv.Mat) gocv.Mat {
	if src.Channels() == 1 {
		return src.Clone()
	}
	dst := gocv.NewMat()
	gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
	return dst
}

// CaptureToMat 将截图转换为 BGR gocv.Mat，调用方负责 Close
func CaptureToMat(c *target.Capture) (gocv.Mat, error) {
	if c == nil || c.Width <= 0 || c.Height <= 0 {
		return gocv.Mat{}, fmt.Errorf("截图为空")
	}
	return bgrToMat(c.Pix, c.Width, c.Height)
}

// bgrToMat 从 BGR 字节创建 Mat（复制一份，避免引用调用方缓冲）
func bgrToMat(pix []byte, w, h int) (gocv.Mat, error) {
	if len(pix) != w*h*3 {
		return gocv.Mat{}, fmt.Errorf("像素长度 %d 与尺寸 %dx%d 不符", len(pix), w, h)
	}
	ref, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, pix)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("创建 Mat 失败: %w", err)
	}
	defer ref.Close()
	return ref.Clone(), nil
}

// grayEdges 返回灰度图和 Canny 边缘图
func grayEdges(bgr gocv.Mat, low, high float32) (gocv.Mat, gocv.Mat) {
	gray := ToGray(bgr)
	edges := gocv.NewMat()
	gocv.Canny(gray, &edges, low, high)
	return gray, edges
}
