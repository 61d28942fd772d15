package stability

import (
	"context"
	"fmt"
	"time"

	"github.com/corona10/goimagehash"

	"github.com/zoeyai/zoeylocator/pkg/target"
)

// WaitForChange 轮询截图直到与 baseline 的像素缓冲不完全一致
// 超时未变化返回 false
func WaitForChange(ctx context.Context, capturer target.Capturer, baseline *target.Capture, timeout, pollInterval time.Duration) (bool, error) {
	return watch(ctx, capturer, baseline, timeout, pollInterval, func(c *target.Capture) (bool, error) {
		return !c.Equal(baseline), nil
	})
}

// WaitForVisualChange 与 WaitForChange 相同，但按感知哈希距离判定变化
// 距离大于 maxDistance 才算变化，可忽略光标闪烁等细小差异
func WaitForVisualChange(ctx context.Context, capturer target.Capturer, baseline *target.Capture, timeout, pollInterval time.Duration, maxDistance int) (bool, error) {
	if baseline == nil {
		return false, target.Collaborator("截图", fmt.Errorf("基准截图为空"))
	}
	base, err := goimagehash.PerceptionHash(baseline.Image())
	if err != nil {
		return false, target.Collaborator("感知哈希", err)
	}

	return watch(ctx, capturer, baseline, timeout, pollInterval, func(c *target.Capture) (bool, error) {
		h, err := goimagehash.PerceptionHash(c.Image())
		if err != nil {
			return false, target.Collaborator("感知哈希", err)
		}
		d, err := base.Distance(h)
		if err != nil {
			return false, target.Collaborator("感知哈希", err)
		}
		return d > maxDistance, nil
	})
}

func watch(ctx context.Context, capturer target.Capturer, baseline *target.Capture, timeout, pollInterval time.Duration, changed func(*target.Capture) (bool, error)) (bool, error) {
	if capturer == nil {
		return false, target.Collaborator("截图", fmt.Errorf("未配置截图器"))
	}
	if baseline == nil {
		return false, target.Collaborator("截图", fmt.Errorf("基准截图为空"))
	}
	if pollInterval <= 0 {
		pollInterval = DefaultInterval
	}

	region := baseline.Region
	end := time.Now().Add(timeout)
	for time.Now().Before(end) {
		if err := ctx.Err(); err != nil {
			return false, canceled(err)
		}

		c, err := capturer.Capture(&region)
		if err != nil {
			return false, target.Collaborator("截图", err)
		}
		ok, err := changed(c)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}

		if err := sleep(ctx, pollInterval); err != nil {
			return false, canceled(err)
		}
	}
	return false, nil
}
