package optimizer

import (
	"math/rand"

	"github.com/sysu-ecnc-dev/service-window/backend/internal/domain"
)

// randomInitGenome 随机初始化一个染色体，每个位点独立均匀地选择窗口
func randomInitGenome(n int, windowCount int, rng *rand.Rand) Genome {
	genome := make(Genome, n)
	for i := range genome {
		genome[i] = rng.Intn(windowCount)
	}
	return genome
}

/**
 * 计算染色体的适应度
 * fitness = max(各窗口的服务时长之和)，即 makespan，越小越好
 * 只需遍历一次染色体，累加每个窗口的总时长后取最大值
 */
func Fitness(genome Genome, customers []domain.Customer, windowCount int) int64 {
	loads := WindowLoads(genome, customers, windowCount)

	var makespan int64
	for _, load := range loads {
		if load > makespan {
			makespan = load
		}
	}
	return makespan
}

// WindowLoads 返回每个窗口的服务时长之和
func WindowLoads(genome Genome, customers []domain.Customer, windowCount int) []int64 {
	loads := make([]int64, windowCount)
	for i, window := range genome {
		loads[window] += customers[i].Duration
	}
	return loads
}

// Group 将顾客 ID 放到其所分配的窗口列表中，保持顾客的输入顺序
func Group(genome Genome, customers []domain.Customer, windowCount int) [][]int64 {
	windows := make([][]int64, windowCount)
	for i := range windows {
		windows[i] = make([]int64, 0)
	}
	for i, window := range genome {
		windows[window] = append(windows[window], customers[i].ID)
	}
	return windows
}

// LowerBound 返回 makespan 的理论下界 ceil(sum / windowCount)
func LowerBound(customers []domain.Customer, windowCount int) int64 {
	sum := TotalDuration(customers)
	w := int64(windowCount)
	return (sum + w - 1) / w
}

func TotalDuration(customers []domain.Customer) int64 {
	var sum int64
	for _, c := range customers {
		sum += c.Duration
	}
	return sum
}

// pickParents 从精英中不放回地抽取两个不同的父本
// 精英只有一个时（种群大小为 2 或 3），两个父本都是它
func pickParents(elite []Genome, rng *rand.Rand) (Genome, Genome) {
	if len(elite) < 2 {
		return elite[0], elite[0]
	}
	i := rng.Intn(len(elite))
	j := rng.Intn(len(elite) - 1)
	if j >= i {
		j++
	}
	return elite[i], elite[j]
}

// 单点交叉
// 切点在 [1, n-1] 中均匀选取，保证两个父本都至少贡献一个位点
// 只有一个位点时没有合法切点，直接复制父本 1
func singlePointCrossover(p1 Genome, p2 Genome, rng *rand.Rand) Genome {
	n := len(p1)
	child := make(Genome, n)

	if n < 2 {
		copy(child, p1)
		return child
	}

	point := rng.Intn(n-1) + 1
	copy(child[:point], p1[:point])
	copy(child[point:], p2[point:])

	return child
}

// 变异
// 每个位点以 mutationRate 的概率被替换为一个随机窗口（可能与原值相同）
func mutate(genome Genome, mutationRate float64, windowCount int, rng *rand.Rand) {
	for i := range genome {
		if rng.Float64() < mutationRate {
			genome[i] = rng.Intn(windowCount)
		}
	}
}
