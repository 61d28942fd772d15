// Package ocr 提供文字识别和文字定位
//
// 基本用法:
//
//	rec, err := ocr.NewPaddleRecognizer(ocr.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rec.Close()
//
//	res, err := ocr.RecognizeCapture(rec, capture, 2)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pos, err := ocr.ResolveText(res, "登录", res.Scale, 0, 0)
package ocr

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/zoeyai/zoeylocator/pkg/target"
)

// DefaultScale 识别前截图的默认放大倍数
const DefaultScale = 2.0

// Upscale 按倍数放大图像，factor <= 1 时原样返回
func Upscale(img image.Image, factor float64) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	w := int(float64(b.Dx()) * factor)
	h := int(float64(b.Dy()) * factor)
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// RecognizeCapture 放大截图后识别，结果携带截图区域和片段像素到屏幕坐标的总倍数
func RecognizeCapture(rec Recognizer, capture *target.Capture, scale float64) (*Result, error) {
	if rec == nil {
		return nil, target.Collaborator("OCR", fmt.Errorf("未配置 OCR 引擎"))
	}
	if capture == nil {
		return nil, target.Collaborator("截图", fmt.Errorf("截图为空"))
	}
	if scale < 1 {
		scale = 1
	}

	fragments, err := rec.Recognize(Upscale(capture.Image(), scale))
	if err != nil {
		return nil, target.Collaborator("OCR", err)
	}

	// 片段坐标是放大后图像的像素，换算回屏幕坐标还要除以截图自身的像素比例
	return &Result{
		Fragments: fragments,
		Region:    capture.Region,
		Scale:     scale * capture.PixelScale(),
	}, nil
}
