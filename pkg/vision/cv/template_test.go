package cv

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestNewTemplateMask(t *testing.T) {
	opaque := NewTemplate(iconImage())
	if opaque.HasMask() {
		t.Error("不透明图像不应带掩码")
	}
	if len(opaque.Pix) != 32*32*3 {
		t.Errorf("像素长度 = %d", len(opaque.Pix))
	}
	// 左上角 (4,4) 为红色，BGR 顺序
	i := (4*32 + 4) * 3
	if opaque.Pix[i] != 40 || opaque.Pix[i+1] != 40 || opaque.Pix[i+2] != 230 {
		t.Errorf("BGR 顺序错误: %v", opaque.Pix[i:i+3])
	}

	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	img.SetNRGBA(1, 0, color.NRGBA{R: 10, A: 255})
	img.SetNRGBA(2, 1, color.NRGBA{G: 10, A: 1})
	masked := NewTemplate(img)
	want := []byte{0, 255, 0, 0, 0, 0, 255, 0}
	if !bytes.Equal(masked.Mask, want) {
		t.Errorf("掩码 = %v, want %v", masked.Mask, want)
	}
}

func TestDecodeTemplate(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, iconImage()); err != nil {
		t.Fatal(err)
	}
	tmpl, err := DecodeTemplate(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeTemplate 失败: %v", err)
	}
	if tmpl.Width != 32 || tmpl.Height != 32 || tmpl.HasMask() {
		t.Errorf("DecodeTemplate = %s, mask %v", tmpl, tmpl.HasMask())
	}

	// 带透明像素的 PNG 解码为 4 通道，alpha > 0 构成掩码
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	buf.Reset()
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	tmpl, err = DecodeTemplate(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeTemplate 失败: %v", err)
	}
	if !tmpl.HasMask() || len(tmpl.Mask) != 64 {
		t.Fatalf("应带 8x8 掩码, got %v", len(tmpl.Mask))
	}
	if tmpl.Mask[0] != 255 || tmpl.Mask[7] != 0 {
		t.Errorf("掩码内容错误: %v", tmpl.Mask[:8])
	}

	if _, err := DecodeTemplate([]byte("garbage")); err == nil {
		t.Error("无效数据应返回错误")
	}
}

func TestIsTemplatePath(t *testing.T) {
	tests := map[string]bool{
		"img/submit":     true,
		"/img/x":         true,
		"button.PNG":     true,
		"photo.jpeg":     true,
		"Submit":         false,
		"Submit.pngtext": false,
	}
	for in, want := range tests {
		if got := IsTemplatePath(in); got != want {
			t.Errorf("IsTemplatePath(%q) = %v, want %v", in, got, want)
		}
	}
}
