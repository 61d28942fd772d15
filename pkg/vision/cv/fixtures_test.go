package cv

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/zoeyai/zoeylocator/pkg/target"
)

var background = color.RGBA{R: 60, G: 60, B: 60, A: 255}

// iconImage 32x32 图标: 4 像素背景色边距 + 四色象限
func iconImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	quadrants := []struct {
		rect image.Rectangle
		c    color.RGBA
	}{
		{image.Rect(4, 4, 16, 16), color.RGBA{R: 230, G: 40, B: 40, A: 255}},
		{image.Rect(16, 4, 28, 16), color.RGBA{R: 40, G: 230, B: 40, A: 255}},
		{image.Rect(4, 16, 16, 28), color.RGBA{R: 40, G: 120, B: 250, A: 255}},
		{image.Rect(16, 16, 28, 28), color.RGBA{R: 240, G: 240, B: 240, A: 255}},
	}
	for _, q := range quadrants {
		draw.Draw(img, q.rect, &image.Uniform{C: q.c}, image.Point{}, draw.Src)
	}
	return img
}

// screenWith 创建纯色屏幕并在指定位置贴入图像
func screenWith(w, h int, bg color.Color, src image.Image, at ...image.Point) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	for _, p := range at {
		r := src.Bounds().Sub(src.Bounds().Min).Add(p)
		draw.Draw(img, r, src, src.Bounds().Min, draw.Src)
	}
	return img
}

// textImage 白底黑字渲染文字
func textImage(t *testing.T, text string, w, h int) *image.RGBA {
	t.Helper()

	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("解析字体失败: %v", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(f)
	c.SetFontSize(16)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.Black)
	c.SetHinting(font.HintingNone)
	if _, err := c.DrawString(text, freetype.Pt(5, 17)); err != nil {
		t.Fatalf("渲染文字失败: %v", err)
	}
	return img
}

func captureOf(img image.Image, region target.Region) *target.Capture {
	return target.NewCapture(img, region)
}
