// Package screen 提供屏幕截图
//
// 截图统一返回 *target.Capture，像素为物理像素，Region 为请求的屏幕坐标区域，
// Scale 为两者之比（macOS Retina 上为 2）。
package screen

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/go-vgo/robotgo"
	"github.com/vova616/screenshot"

	"github.com/zoeyai/zoeylocator/pkg/target"
)

// 截图后端名称
const (
	BackendRobotgo    = "robotgo"
	BackendScreenshot = "screenshot"
)

// RobotgoCapturer 基于 robotgo 的截图器
type RobotgoCapturer struct {
	mu sync.Mutex
}

// NewRobotgoCapturer 创建 robotgo 截图器
func NewRobotgoCapturer() *RobotgoCapturer {
	return &RobotgoCapturer{}
}

// Capture 截取区域，region 为 nil 时截取主显示器全屏
func (c *RobotgoCapturer) Capture(region *target.Region) (*target.Capture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var img image.Image
	var err error
	var r target.Region

	if region == nil {
		w, h := physicalScreenSize()
		r = target.Region{Width: w, Height: h}
		img, err = robotgo.CaptureImg()
	} else {
		if region.Empty() {
			return nil, fmt.Errorf("截图区域无效: %+v", *region)
		}
		r = *region
		x, y, w, h := regionForInput(r)
		img, err = robotgo.CaptureImg(x, y, w, h)
	}
	if err != nil {
		return nil, fmt.Errorf("截屏失败: %w", err)
	}
	if img == nil {
		return nil, fmt.Errorf("截屏失败: 图像为空")
	}

	return newCapture(img, r), nil
}

// DisplayCapturer 基于 vova616/screenshot 的截图器
type DisplayCapturer struct{}

// NewDisplayCapturer 创建截图器
func NewDisplayCapturer() *DisplayCapturer {
	return &DisplayCapturer{}
}

// Capture 截取区域，region 为 nil 时截取主显示器全屏
func (c *DisplayCapturer) Capture(region *target.Region) (*target.Capture, error) {
	var rect image.Rectangle
	if region == nil {
		r, err := screenshot.ScreenRect()
		if err != nil {
			return nil, fmt.Errorf("获取屏幕尺寸失败: %w", err)
		}
		rect = r
	} else {
		if region.Empty() {
			return nil, fmt.Errorf("截图区域无效: %+v", *region)
		}
		rect = region.Rect()
	}

	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("截屏失败: %w", err)
	}
	return newCapture(img, target.RegionFromRect(rect)), nil
}

// NewCapturer 按名称创建截图器，空名称使用 robotgo
func NewCapturer(backend string) (target.Capturer, error) {
	switch strings.ToLower(backend) {
	case "", BackendRobotgo:
		return NewRobotgoCapturer(), nil
	case BackendScreenshot:
		return NewDisplayCapturer(), nil
	default:
		return nil, fmt.Errorf("不支持的截图后端: %s", backend)
	}
}

// ScreenSize 主显示器在截图坐标空间中的尺寸
func ScreenSize() (width, height int) {
	return physicalScreenSize()
}

// newCapture 保留请求区域，截图像素与区域尺寸不一致时（DPI 缩放）记录比例
// 接近 1 的比例视为取整误差
func newCapture(img image.Image, region target.Region) *target.Capture {
	c := target.NewCapture(img, region)
	c.Scale = normalizeScale(c.Scale)
	return c
}
