package stability

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math/rand"

	"github.com/zoeyai/zoeylocator/pkg/target"
)

// fakeCapturer 按顺序返回截图，用完后重复最后一张
type fakeCapturer struct {
	frames  []*target.Capture
	err     error
	calls   int
	regions []*target.Region
}

func (f *fakeCapturer) Capture(region *target.Region) (*target.Capture, error) {
	f.regions = append(f.regions, region)
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.frames) == 0 {
		return solidCapture(8, 8, 0), nil
	}
	i := f.calls - 1
	if i >= len(f.frames) {
		i = len(f.frames) - 1
	}
	return f.frames[i], nil
}

func solidCapture(w, h int, v uint8) *target.Capture {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
		if i%4 == 3 {
			img.Pix[i] = 0xff
		}
	}
	return target.NewCapture(img, target.Region{})
}

func noiseCapture(seed int64) *target.Capture {
	r := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(r.Intn(256))
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return target.NewCapture(img, target.Region{})
}

// step 一次 match 的脚本结果
type step struct {
	p   target.Point
	err error
}

func hit(x, y int) step { return step{p: target.Point{X: x, Y: y}} }

func miss() step {
	return step{err: target.NotFound(target.ReasonNoConfidentMatch, "miss")}
}

// script 按顺序返回结果，用完后重复最后一个
type script struct {
	steps []step
	calls int
}

func (s *script) match(ctx context.Context, _ *target.Capture) (target.Point, error) {
	i := s.calls
	s.calls++
	if i >= len(s.steps) {
		i = len(s.steps) - 1
	}
	return s.steps[i].p, s.steps[i].err
}

var errBoom = errors.New("boom")

// hidpiCapturer 按请求区域返回 2 倍像素的纯色截图，模拟 Retina
type hidpiCapturer struct {
	regions []target.Region
}

func (f *hidpiCapturer) Capture(region *target.Region) (*target.Capture, error) {
	f.regions = append(f.regions, *region)
	img := image.NewRGBA(image.Rect(0, 0, region.Width*2, region.Height*2))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	return target.NewCapture(img, *region), nil
}
