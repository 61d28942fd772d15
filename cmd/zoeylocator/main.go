package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/zoeyai/zoeylocator/internal/logger"
	"github.com/zoeyai/zoeylocator/pkg/auto/screen"
	"github.com/zoeyai/zoeylocator/pkg/config"
	"github.com/zoeyai/zoeylocator/pkg/grid"
	"github.com/zoeyai/zoeylocator/pkg/locate"
	"github.com/zoeyai/zoeylocator/pkg/permissions"
	"github.com/zoeyai/zoeylocator/pkg/target"
	"github.com/zoeyai/zoeylocator/pkg/vision/cv"
	"github.com/zoeyai/zoeylocator/pkg/vision/ocr"
	"github.com/zoeyai/zoeylocator/pkg/vision/ocr/tesseract"
)

// 版本信息 (可通过 ldflags 注入)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// 退出码
const (
	exitOK       = 0
	exitConfig   = 1
	exitNotFound = 2
)

func main() {
	var (
		imagePath   = flag.String("image", "", "要查找的模板图片路径")
		text        = flag.String("text", "", "要查找的文字")
		waitText    = flag.String("wait-text", "", "等待文字出现")
		waitChange  = flag.Bool("wait-change", false, "等待画面变化")
		dumpPath    = flag.String("dump", "", "截取区域并保存到文件")
		timeout     = flag.Duration("timeout", 0, "等待结果稳定的超时 (例: 3s，0 表示只尝试一次)")
		interval    = flag.Duration("interval", 0, "轮询间隔")
		offsetX     = flag.Int("offset-x", 0, "结果 X 偏移")
		offsetY     = flag.Int("offset-y", 0, "结果 Y 偏移")
		regionStr   = flag.String("region", "", "搜索区域 x,y,w,h")
		gridStr     = flag.String("grid", "", "只在网格格子内搜索 rows.cols.row.col")
		scale       = flag.Float64("scale", 0, "OCR 放大倍数")
		capture     = flag.String("capture", "", "截图后端: robotgo / screenshot")
		ocrEngine   = flag.String("ocr", "", "OCR 引擎: paddle / tesseract")
		legacy      = flag.Bool("legacy-miss", false, "未匹配的帧不打断稳定计数")
		debug       = flag.Bool("debug", false, "输出调试日志")
		logFile     = flag.String("log-file", "", "日志文件")
		configDir   = flag.String("config", "", "配置目录 (默认 ~/.zoey-locator)")
		envFile     = flag.String("env", ".env", "环境变量文件")
		saveConfig  = flag.Bool("save", false, "保存配置到本地")
		showVersion = flag.Bool("version", false, "显示版本信息")
		showHelp    = flag.Bool("help", false, "显示帮助信息")
	)

	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}
	if *showHelp {
		printHelp()
		return
	}

	// 日志输出到 stderr，stdout 只输出结果
	logger.Default().SetOutput(os.Stderr)

	manager := config.GetDefaultManager()
	if *configDir != "" {
		manager = config.NewManagerWithDir(*configDir)
	}

	settings, err := manager.Load()
	if err != nil {
		logger.Warn("加载配置失败: %v", err)
	}
	if err := config.LoadEnv(settings, *envFile); err != nil {
		fail(exitConfig, "加载环境变量失败: %v", err)
	}

	// 命令行参数优先级高于配置文件和环境变量
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["timeout"] {
		settings.Timeout = config.Duration(*timeout)
	}
	if set["interval"] {
		settings.PollInterval = config.Duration(*interval)
	}
	if set["scale"] {
		settings.ScaleFactor = *scale
	}
	if *capture != "" {
		settings.CaptureBackend = *capture
	}
	if *ocrEngine != "" {
		settings.OCREngine = *ocrEngine
	}
	if *logFile != "" {
		settings.LogFile = *logFile
	}
	if *debug {
		settings.LogLevel = "debug"
	}

	if err := settings.Validate(); err != nil {
		fail(exitConfig, "配置无效: %v", err)
	}

	region, err := parseRegion(*regionStr)
	if err != nil {
		fail(exitConfig, "%v", err)
	}
	if *gridStr != "" {
		region, err = gridRegion(region, *gridStr)
		if err != nil {
			fail(exitConfig, "%v", err)
		}
	}

	if *imagePath == "" && *text == "" && *waitText == "" && !*waitChange && *dumpPath == "" {
		printHelp()
		os.Exit(exitConfig)
	}

	logger.Default().SetLevel(logger.ParseLevel(settings.LogLevel))
	if settings.LogFile != "" {
		if err := logger.Default().SetFile(settings.LogFile); err != nil {
			fail(exitConfig, "%v", err)
		}
	}

	if *saveConfig {
		if err := manager.Save(settings); err != nil {
			logger.Warn("保存配置失败: %v", err)
		} else {
			logger.Info("配置已保存到 %s", manager.GetConfigFile())
		}
	}

	if msg := permissions.Instructions(); msg != "" {
		logger.Warn("%s", msg)
	}

	capturer, err := screen.NewCapturer(settings.CaptureBackend)
	if err != nil {
		fail(exitConfig, "%v", err)
	}

	var recognizer ocr.Recognizer
	closeRecognizer := func() {}
	if *text != "" || *waitText != "" {
		rec, closer, err := newRecognizer(settings)
		if err != nil {
			fail(exitConfig, "初始化 OCR 失败: %v", err)
		}
		recognizer, closeRecognizer = rec, closer
	}

	engine := locate.New(capturer, recognizer,
		locate.WithMatcher(cv.NewMatcher(cv.WithRawThreshold(settings.RawThreshold))))

	opts := []locate.Option{
		locate.WithTimeout(time.Duration(settings.Timeout)),
		locate.WithOffset(*offsetX, *offsetY),
		locate.WithScale(settings.ScaleFactor),
	}
	if settings.PollInterval > 0 {
		opts = append(opts, locate.WithInterval(time.Duration(settings.PollInterval)))
	}
	if region != nil {
		opts = append(opts, locate.WithRegion(region.Left, region.Top, region.Width, region.Height))
	}
	if *legacy {
		opts = append(opts, locate.WithLegacyMissPolicy())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 等待类操作未指定超时时使用默认 5 秒
	waitOpts := opts
	if !set["timeout"] && settings.Timeout == config.DefaultSettings().Timeout {
		waitOpts = append(waitOpts[:len(waitOpts):len(waitOpts)], locate.WithTimeout(locate.DefaultWaitTimeout))
	}

	code := exitOK
	switch {
	case *dumpPath != "":
		code = dump(capturer, region, *dumpPath)
	case *waitChange:
		changed, err := engine.WaitForChange(ctx, waitOpts...)
		code = report(changed, err, "changed")
	case *waitText != "":
		found, err := engine.WaitForText(ctx, *waitText, waitOpts...)
		code = report(found, err, "found")
	case *imagePath != "":
		p, err := engine.FindImage(ctx, *imagePath, opts...)
		code = printPoint(p, err)
	default:
		p, err := engine.FindText(ctx, *text, opts...)
		code = printPoint(p, err)
	}

	// os.Exit 不执行 defer
	stop()
	closeRecognizer()
	logger.Default().Close()
	os.Exit(code)
}

// newRecognizer 按配置创建 OCR 引擎
func newRecognizer(s *config.Settings) (ocr.Recognizer, func(), error) {
	switch s.OCREngine {
	case config.EngineTesseract:
		return tesseract.New(s.TesseractLanguages...), func() {}, nil
	default:
		rec, err := ocr.NewPaddleRecognizer(s.OCRConfig())
		if err != nil {
			return nil, nil, err
		}
		return rec, func() { rec.Close() }, nil
	}
}

// parseRegion 解析 "x,y,w,h"，空字符串表示全屏
func parseRegion(s string) (*target.Region, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("区域格式应为 x,y,w,h: %q", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("区域格式应为 x,y,w,h: %q", s)
		}
		v[i] = n
	}

	r := &target.Region{Left: v[0], Top: v[1], Width: v[2], Height: v[3]}
	if r.Empty() {
		return nil, fmt.Errorf("区域宽高必须大于 0: %q", s)
	}
	return r, nil
}

// gridRegion 把搜索区域缩小到网格格子，未指定区域时以整个屏幕为基准
func gridRegion(base *target.Region, s string) (*target.Region, error) {
	pos, err := grid.Parse(s)
	if err != nil {
		return nil, err
	}
	if base == nil {
		w, h := screen.ScreenSize()
		base = &target.Region{Width: w, Height: h}
	}
	cell := pos.Cell(*base)
	if cell.Empty() {
		return nil, fmt.Errorf("网格格子为空: %s", s)
	}
	return &cell, nil
}

// exitCode 定位失败统一返回 2，并输出原因标签
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	return exitNotFound
}

func printPoint(p target.Point, err error) int {
	if err != nil {
		fmt.Fprintln(os.Stderr, target.ReasonOf(err))
		logger.Debug("%v", err)
		return exitCode(err)
	}
	fmt.Printf("%d %d\n", p.X, p.Y)
	return exitOK
}

func report(ok bool, err error, word string) int {
	if err != nil {
		fmt.Fprintln(os.Stderr, target.ReasonOf(err))
		logger.Debug("%v", err)
		return exitCode(err)
	}
	if !ok {
		fmt.Fprintln(os.Stderr, target.ReasonTimeout)
		return exitNotFound
	}
	fmt.Println(word)
	return exitOK
}

func dump(capturer target.Capturer, region *target.Region, path string) int {
	c, err := capturer.Capture(region)
	if err != nil {
		fmt.Fprintln(os.Stderr, target.ReasonCollaboratorFailure)
		logger.Error("截图失败: %v", err)
		return exitNotFound
	}
	if err := screen.Save(path, c); err != nil {
		logger.Error("%v", err)
		return exitConfig
	}
	fmt.Printf("%s %d %d %d %d\n", path, c.Region.Left, c.Region.Top, c.Region.Width, c.Region.Height)
	return exitOK
}

func fail(code int, format string, args ...interface{}) {
	logger.Error(format, args...)
	os.Exit(code)
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("Zoey Locator v%s\n", Version)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("Zoey Locator - 屏幕目标定位工具")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  zoeylocator [选项]")
	fmt.Println()
	fmt.Println("定位:")
	fmt.Println("  -image string       要查找的模板图片 (带透明通道时自动使用掩码)")
	fmt.Println("  -text string        要查找的文字")
	fmt.Println("  -wait-text string   等待文字出现")
	fmt.Println("  -wait-change        等待画面变化")
	fmt.Println("  -dump string        截取区域并保存到文件")
	fmt.Println()
	fmt.Println("选项:")
	fmt.Println("  -timeout duration   等待结果稳定的超时 (默认 3s，0 表示只尝试一次)")
	fmt.Println("  -interval duration  轮询间隔")
	fmt.Println("  -offset-x int       结果 X 偏移")
	fmt.Println("  -offset-y int       结果 Y 偏移")
	fmt.Println("  -region x,y,w,h     搜索区域 (默认全屏)")
	fmt.Println("  -grid r.c.row.col   只在区域的网格格子内搜索 (如 2.2.1.1)")
	fmt.Println("  -scale float        OCR 放大倍数 (默认 2)")
	fmt.Println("  -capture string     截图后端: robotgo / screenshot")
	fmt.Println("  -ocr string         OCR 引擎: paddle / tesseract")
	fmt.Println("  -legacy-miss        未匹配的帧不打断稳定计数")
	fmt.Println("  -debug              输出调试日志")
	fmt.Println("  -log-file string    日志文件")
	fmt.Println("  -config string      配置目录")
	fmt.Println("  -env string         环境变量文件 (默认 .env)")
	fmt.Println("  -save               保存配置到本地")
	fmt.Println("  -version            显示版本信息")
	fmt.Println("  -help               显示帮助信息")
	fmt.Println()
	fmt.Println("输出:")
	fmt.Println("  成功时 stdout 输出 \"x y\"，退出码 0")
	fmt.Println("  未找到时 stderr 输出原因 (ambiguous、timeout 等)，退出码 2")
	fmt.Println("  配置错误退出码 1")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  zoeylocator -image img/submit.png -timeout 3s")
	fmt.Println("  zoeylocator -text 登录 -region 0,0,800,600 -ocr tesseract")
	fmt.Println("  zoeylocator -wait-change -timeout 10s")
	fmt.Println()
	fmt.Printf("配置文件位置: %s\n", config.GetDefaultManager().GetConfigFile())
	fmt.Printf("环境变量前缀: %s\n", config.EnvPrefix)
}
