package optimizer

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/sysu-ecnc-dev/service-window/backend/internal/domain"
)

func (p Parameters) Validate() error {
	if p.PopulationSize < 2 {
		return fmt.Errorf("%w: 种群大小必须不小于 2（当前为 %d）", ErrInvalidConfiguration, p.PopulationSize)
	}
	if p.Generations < 0 {
		return fmt.Errorf("%w: 迭代次数不能为负数（当前为 %d）", ErrInvalidConfiguration, p.Generations)
	}
	if math.IsNaN(p.MutationRate) || p.MutationRate < 0 || p.MutationRate > 1 {
		return fmt.Errorf("%w: 变异概率必须在 [0, 1] 范围内（当前为 %v）", ErrInvalidConfiguration, p.MutationRate)
	}
	return nil
}

func validateInstance(customers []domain.Customer, windowCount int) error {
	if len(customers) == 0 {
		return fmt.Errorf("%w: 顾客列表不能为空", ErrInvalidConfiguration)
	}
	if windowCount < 1 {
		return fmt.Errorf("%w: 窗口数量必须不小于 1（当前为 %d）", ErrInvalidConfiguration, windowCount)
	}
	for i, c := range customers {
		if c.Duration <= 0 {
			return fmt.Errorf("%w: 第 %d 个顾客（ID %d）的服务时长必须为正数", ErrInvalidConfiguration, i+1, c.ID)
		}
	}
	return nil
}

// Optimize 使用遗传算法将顾客分配到 windowCount 个窗口，使最长窗口的总服务时长尽可能小
// rng 由调用方提供，固定种子即可复现结果；并发调用时每次运行应使用各自的 rng
func Optimize(customers []domain.Customer, windowCount int, params Parameters, rng *rand.Rand) (*Solution, error) {
	if err := validateInstance(customers, windowCount); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: 随机数生成器未初始化", ErrInvalidConfiguration)
	}

	n := len(customers)
	popSize := params.PopulationSize

	// 生成初始种群
	pop := make([]Genome, popSize)
	for i := range pop {
		pop[i] = randomInitGenome(n, windowCount, rng)
	}

	history := make([]int64, 0, params.Generations)

	// 迭代
	for gen := 0; gen < params.Generations; gen++ {
		var best int64
		pop, best = nextGeneration(pop, customers, windowCount, params.MutationRate, rng)
		history = append(history, best)
	}

	// 在最终种群中找到最佳个体（相同适应度取第一个出现的）
	best := 0
	bestFit := Fitness(pop[0], customers, windowCount)
	for i := 1; i < popSize; i++ {
		if fit := Fitness(pop[i], customers, windowCount); fit < bestFit {
			best = i
			bestFit = fit
		}
	}

	genome := make(Genome, n)
	copy(genome, pop[best])

	return &Solution{
		Genome:  genome,
		Fitness: bestFit,
		Windows: Group(genome, customers, windowCount),
		History: history,
	}, nil
}

// nextGeneration 评估当前种群并繁殖出下一代，返回下一代和当前种群的最佳适应度
// 精英原样进入下一代，子代都是新分配的切片，当前种群中的染色体不会被修改
func nextGeneration(pop []Genome, customers []domain.Customer, windowCount int, mutationRate float64, rng *rand.Rand) ([]Genome, int64) {
	popSize := len(pop)
	eliteCount := popSize / 2

	fitness := make([]int64, popSize)
	idxs := make([]int, popSize)
	for i := range pop {
		fitness[i] = Fitness(pop[i], customers, windowCount)
		idxs[i] = i
	}

	// 保留精英，适应度相同时保持原有顺序
	sort.SliceStable(idxs, func(i, j int) bool {
		return fitness[idxs[i]] < fitness[idxs[j]]
	})

	newPop := make([]Genome, 0, popSize)
	for _, idx := range idxs[:eliteCount] {
		newPop = append(newPop, pop[idx])
	}
	elite := newPop[:eliteCount:eliteCount]

	// 繁殖
	for len(newPop) < popSize {
		p1, p2 := pickParents(elite, rng)
		child := singlePointCrossover(p1, p2, rng)
		mutate(child, mutationRate, windowCount, rng)
		newPop = append(newPop, child)
	}

	return newPop, fitness[idxs[0]]
}
