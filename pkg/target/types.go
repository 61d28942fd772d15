// Package target 定义屏幕目标定位的核心数据类型
//
// 所有对外暴露的坐标均为屏幕绝对坐标；截图、模板、OCR 内部的坐标都是局部像素坐标，
// 必须经过 Transform 转换且只转换一次。
package target

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
)

// Point 表示屏幕绝对坐标点
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String 返回字符串表示
func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Region 截图在虚拟屏幕上覆盖的矩形区域
type Region struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Origin 返回区域左上角
func (r Region) Origin() Point {
	return Point{X: r.Left, Y: r.Top}
}

// Empty 区域是否为空
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Rect 转换为 image.Rectangle
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

// RegionFromRect 从 image.Rectangle 创建区域
func RegionFromRect(rect image.Rectangle) Region {
	return Region{Left: rect.Min.X, Top: rect.Min.Y, Width: rect.Dx(), Height: rect.Dy()}
}

// Capture 一次截图: BGR 三通道 8 位像素缓冲 + 截图区域
// 创建后不再修改
type Capture struct {
	// Pix BGR 像素数据，按行存储，长度为 Width*Height*3
	Pix    []byte
	Width  int
	Height int
	// Region 请求截取的屏幕区域（屏幕坐标）
	Region Region
	// Scale 每个屏幕坐标单位对应的像素数 (Retina 上为 2)，<= 0 视为 1
	Scale float64
}

// NewCapture 从 image.Image 创建截图，像素转换为 BGR
func NewCapture(img image.Image, region Region) *Capture {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, 0, w*h*3)

	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < h; y++ {
			row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
			for x := 0; x < w; x++ {
				pix = append(pix, row[x*4+2], row[x*4+1], row[x*4])
			}
		}
	} else {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				pix = append(pix, c.B, c.G, c.R)
			}
		}
	}

	scale := 1.0
	if region.Empty() {
		region.Width, region.Height = w, h
	} else {
		scale = float64(w) / float64(region.Width)
	}

	return &Capture{Pix: pix, Width: w, Height: h, Region: region, Scale: scale}
}

// PixelScale 像素与屏幕坐标的比例
func (c *Capture) PixelScale() float64 {
	if c.Scale <= 0 {
		return 1
	}
	return c.Scale
}

// Image 转换为 *image.RGBA
func (c *Capture) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	for i, j := 0, 0; i+2 < len(c.Pix); i, j = i+3, j+4 {
		img.Pix[j] = c.Pix[i+2]
		img.Pix[j+1] = c.Pix[i+1]
		img.Pix[j+2] = c.Pix[i]
		img.Pix[j+3] = 0xff
	}
	return img
}

// Equal 逐字节比较两张截图的像素缓冲
func (c *Capture) Equal(other *Capture) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Width == other.Width && c.Height == other.Height && bytes.Equal(c.Pix, other.Pix)
}

// Capturer 屏幕截图器
// region 为 nil 时截取主显示器全屏
type Capturer interface {
	Capture(region *Region) (*Capture, error)
}
