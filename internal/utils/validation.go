package utils

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/service-window/backend/internal/domain"
)

// ValidateOptimizationRun 在保存前检查运行记录是否自洽
func ValidateOptimizationRun(run *domain.OptimizationRun) error {
	if run.WindowCount < 1 {
		return errors.New("窗口数量必须不小于 1")
	}
	if len(run.Customers) == 0 {
		return errors.New("运行记录中没有顾客")
	}

	var maxLoad int64
	loads := make([]int64, run.WindowCount)
	for i, c := range run.Customers {
		if c.Position != int32(i) {
			return fmt.Errorf("第 %d 个顾客的位置 %d 不连续", i+1, c.Position)
		}
		if c.Duration <= 0 {
			return fmt.Errorf("顾客 %d 的服务时长必须为正数", c.CustomerID)
		}
		if c.WindowIndex < 0 || c.WindowIndex >= run.WindowCount {
			return fmt.Errorf("顾客 %d 被分配到了不存在的窗口 %d", c.CustomerID, c.WindowIndex)
		}
		loads[c.WindowIndex] += c.Duration
		maxLoad = max(maxLoad, loads[c.WindowIndex])
	}

	if maxLoad != run.Fitness {
		return fmt.Errorf("记录的最长窗口时长 %d 与实际分配 %d 不一致", run.Fitness, maxLoad)
	}

	return nil
}
