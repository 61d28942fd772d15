package ocr

import (
	"image"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/zoeyai/zoeylocator/pkg/target"
)

// Fragment 一个识别出的文字片段，坐标为识别图像（放大后）内的局部像素坐标
type Fragment struct {
	Text string `json:"text"`
	// Confidence 识别置信度 (0-100)
	Confidence int `json:"confidence"`
	Left       int `json:"left"`
	Top        int `json:"top"`
	Width      int `json:"width"`
	Height     int `json:"height"`
}

// Blank 去除空白后是否为空
func (f Fragment) Blank() bool {
	return strings.TrimSpace(f.Text) == ""
}

// Result 一次识别的结果，携带截图区域和放大倍数
type Result struct {
	Fragments []Fragment `json:"fragments"`
	// Region 被识别截图的屏幕区域
	Region target.Region `json:"region"`
	// Scale 片段像素与屏幕坐标之比（识别前放大倍数 x 截图像素比例）
	Scale float64 `json:"scale"`
}

// Recognizer 文字识别引擎
type Recognizer interface {
	Recognize(img image.Image) ([]Fragment, error)
}

// Config PaddleOCR 配置
type Config struct {
	// OnnxRuntimeLibPath ONNX Runtime 动态库路径
	OnnxRuntimeLibPath string `json:"onnxRuntimeLibPath"`
	// DetModelPath 检测模型路径
	DetModelPath string `json:"detModelPath"`
	// RecModelPath 识别模型路径
	RecModelPath string `json:"recModelPath"`
	// DictPath 字典文件路径
	DictPath string `json:"dictPath"`
}

// DefaultConfig 默认配置，在可执行文件目录和当前目录下查找模型
func DefaultConfig() Config {
	return Config{
		OnnxRuntimeLibPath: defaultOnnxRuntimePath(),
		DetModelPath:       defaultModelPath("det.onnx"),
		RecModelPath:       defaultModelPath("rec.onnx"),
		DictPath:           defaultModelPath("dict.txt"),
	}
}

// Missing 返回不存在的文件路径
func (c Config) Missing() []string {
	var missing []string
	for _, p := range []string{c.OnnxRuntimeLibPath, c.DetModelPath, c.RecModelPath, c.DictPath} {
		if !fileExists(p) {
			missing = append(missing, p)
		}
	}
	return missing
}

// IsAvailable 模型文件是否齐全
func (c Config) IsAvailable() bool {
	return len(c.Missing()) == 0
}

func executableDir() string {
	execPath, err := os.Executable()
	if err != nil {
		return "."
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return "."
	}
	return filepath.Dir(execPath)
}

// resourcesDir macOS .app bundle 中为 Contents/Resources，其余与可执行文件同目录
func resourcesDir() string {
	execDir := executableDir()
	if runtime.GOOS == "darwin" {
		dir := filepath.Join(execDir, "..", "Resources")
		if fileExists(dir) {
			return dir
		}
	}
	return execDir
}

func defaultOnnxRuntimePath() string {
	execDir := executableDir()
	resDir := resourcesDir()

	var paths []string
	switch runtime.GOOS {
	case "darwin":
		paths = []string{
			filepath.Join(execDir, "..", "Frameworks", "libonnxruntime.dylib"),
			filepath.Join(execDir, "libonnxruntime.dylib"),
			filepath.Join(resDir, "lib", "onnxruntime_"+runtime.GOARCH+".dylib"),
			"models/lib/onnxruntime_" + runtime.GOARCH + ".dylib",
		}
	case "windows":
		paths = []string{
			filepath.Join(execDir, "onnxruntime.dll"),
			filepath.Join(resDir, "onnxruntime.dll"),
			"models/lib/onnxruntime.dll",
		}
	default:
		paths = []string{
			filepath.Join(execDir, "libonnxruntime.so"),
			filepath.Join(resDir, "lib", "onnxruntime_"+runtime.GOARCH+".so"),
			"models/lib/onnxruntime_" + runtime.GOARCH + ".so",
		}
	}

	for _, p := range paths {
		if fileExists(p) {
			return p
		}
	}
	return paths[len(paths)-1]
}

func defaultModelPath(filename string) string {
	paths := []string{
		filepath.Join(resourcesDir(), "models", "paddle_weights", filename),
		filepath.Join(executableDir(), "models", "paddle_weights", filename),
		filepath.Join("models", "paddle_weights", filename),
	}
	for _, p := range paths {
		if fileExists(p) {
			return p
		}
	}
	return paths[len(paths)-1]
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
