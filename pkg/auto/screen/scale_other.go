//go:build !windows

package screen

import (
	"github.com/go-vgo/robotgo"

	"github.com/zoeyai/zoeylocator/pkg/target"
)

// regionForInput 非 Windows 平台截图坐标与 robotgo 坐标一致
func regionForInput(r target.Region) (int, int, int, int) {
	return r.Left, r.Top, r.Width, r.Height
}

// physicalScreenSize robotgo 坐标空间的屏幕尺寸
// macOS Retina 上截图像素是它的 2 倍，由 Capture.Scale 记录
func physicalScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}
