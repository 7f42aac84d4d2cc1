package optimizer

import "errors"

// 参数或输入不满足前置条件时返回，调用方通过 errors.Is 判断
var ErrInvalidConfiguration = errors.New("无效的配置")

// Genome: 第 i 位表示第 i 个顾客被分配到的窗口编号，取值范围为 [0, windowCount)
type Genome []int

// 遗传算法参数
type Parameters struct {
	PopulationSize int     // 种群大小
	Generations    int     // 迭代次数
	MutationRate   float64 // 每个位点的变异概率
}

func DefaultParameters() Parameters {
	return Parameters{
		PopulationSize: 10,
		Generations:    100,
		MutationRate:   0.1,
	}
}

// Solution: 最终种群中最好的个体
type Solution struct {
	Genome  Genome    `json:"bestSolution"`
	Fitness int64     `json:"bestFitness"`
	Windows [][]int64 `json:"windows"` // 每个窗口分配到的顾客 ID
	History []int64   `json:"history"` // 每一代评估后的最佳适应度
}
