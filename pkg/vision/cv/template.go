package cv

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"gocv.io/x/gocv"

	"github.com/zoeyai/zoeylocator/pkg/target"
)

// Template 待查找的模板图像
// 创建后不再修改
type Template struct {
	// Pix BGR 像素数据，长度为 Width*Height*3
	Pix    []byte
	Width  int
	Height int
	// Mask 单通道掩码，非零像素参与比较；nil 表示不使用掩码
	Mask []byte
	// Name 模板来源，仅用于日志
	Name string
}

// String 返回字符串表示
func (t *Template) String() string {
	if t.Name != "" {
		return fmt.Sprintf("Template(%s %dx%d)", t.Name, t.Width, t.Height)
	}
	return fmt.Sprintf("Template(%dx%d)", t.Width, t.Height)
}

// HasMask 是否带掩码
func (t *Template) HasMask() bool {
	return t.Mask != nil
}

// TextLike 宽度超过高度 3 倍视为文字类模板
func (t *Template) TextLike() bool {
	return t.Width > t.Height*3
}

// validateMask 检查掩码尺寸和内容
func (t *Template) validateMask() error {
	if t.Mask == nil {
		return nil
	}
	if len(t.Mask) != t.Width*t.Height {
		return target.NotFound(target.ReasonInvalidMask,
			"掩码尺寸 %d 与模板 %dx%d 不一致", len(t.Mask), t.Width, t.Height)
	}
	for _, v := range t.Mask {
		if v != 0 {
			return nil
		}
	}
	return target.NotFound(target.ReasonInvalidMask, "掩码为空")
}

// LoadTemplate 读取模板文件
// 带 alpha 通道时，alpha > 0 的像素构成掩码；没有 alpha 通道则不使用掩码
func LoadTemplate(path string) (*Template, error) {
	mat := gocv.IMRead(path, gocv.IMReadUnchanged)
	if mat.Empty() {
		return nil, fmt.Errorf("无法读取图像: %s", path)
	}
	defer mat.Close()

	tmpl, err := TemplateFromMat(mat)
	if err != nil {
		return nil, fmt.Errorf("解析模板 %s 失败: %w", path, err)
	}
	tmpl.Name = path
	return tmpl, nil
}

// DecodeTemplate 从内存中的图像数据（PNG/JPEG 等）解码模板
func DecodeTemplate(data []byte) (*Template, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadUnchanged)
	if err != nil {
		return nil, fmt.Errorf("解码模板失败: %w", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("解码模板失败: 图像为空")
	}
	return TemplateFromMat(mat)
}

// TemplateFromMat 从 8 位 1/3/4 通道 Mat 创建模板
func TemplateFromMat(mat gocv.Mat) (*Template, error) {
	bgr := gocv.NewMat()
	defer bgr.Close()

	var mask []byte
	switch mat.Type() {
	case gocv.MatTypeCV8UC4:
		channels := gocv.Split(mat)
		defer func() {
			for _, ch := range channels {
				ch.Close()
			}
		}()
		gocv.Merge(channels[:3], &bgr)

		alpha := gocv.NewMat()
		defer alpha.Close()
		gocv.Threshold(channels[3], &alpha, 0, 255, gocv.ThresholdBinary)
		mask = alpha.ToBytes()
	case gocv.MatTypeCV8UC3:
		mat.CopyTo(&bgr)
	case gocv.MatTypeCV8UC1:
		gocv.CvtColor(mat, &bgr, gocv.ColorGrayToBGR)
	default:
		return nil, fmt.Errorf("不支持的图像类型: %v", mat.Type())
	}

	return &Template{
		Pix:    bgr.ToBytes(),
		Width:  bgr.Cols(),
		Height: bgr.Rows(),
		Mask:   mask,
	}, nil
}

// NewTemplate 从 image.Image 创建模板
// 非不透明图像的 alpha > 0 像素构成掩码
func NewTemplate(img image.Image) *Template {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, 0, w*h*3)

	var mask []byte
	opaque, ok := img.(interface{ Opaque() bool })
	withAlpha := !ok || !opaque.Opaque()
	if withAlpha {
		mask = make([]byte, 0, w*h)
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			pix = append(pix, c.B, c.G, c.R)
			if withAlpha {
				if c.A > 0 {
					mask = append(mask, 255)
				} else {
					mask = append(mask, 0)
				}
			}
		}
	}

	return &Template{Pix: pix, Width: w, Height: h, Mask: mask}
}

// IsTemplatePath 判断定位目标是否为图像路径（其余按文字处理）
func IsTemplatePath(s string) bool {
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "img/") || strings.HasPrefix(lower, "/img/") {
		return true
	}
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".bmp"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
