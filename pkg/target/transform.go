package target

import "math"

// Transform 局部坐标到屏幕绝对坐标的转换
//
// 转换顺序固定: 先除以缩放系数并向下取整，再加区域原点，最后加调用方偏移。
type Transform struct {
	Region Region
	// Scale 工作图像相对截图的放大倍数，<= 0 视为 1
	Scale  float64
	Offset Point
}

// NewTransform 创建坐标转换
func NewTransform(region Region, scale float64, xOffset, yOffset int) Transform {
	return Transform{Region: region, Scale: scale, Offset: Point{X: xOffset, Y: yOffset}}
}

// Apply 转换工作图像中的坐标
func (t Transform) Apply(x, y float64) Point {
	scale := t.Scale
	if scale <= 0 {
		scale = 1
	}
	return Point{
		X: int(math.Floor(x/scale)) + t.Region.Left + t.Offset.X,
		Y: int(math.Floor(y/scale)) + t.Region.Top + t.Offset.Y,
	}
}

// Center 左上角位置加半宽半高（整数除法）
func Center(left, top, width, height int) (float64, float64) {
	return float64(left + width/2), float64(top + height/2)
}
