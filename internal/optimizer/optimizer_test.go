package optimizer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/domain"
)

func exampleCustomers() []domain.Customer {
	return []domain.Customer{
		{ID: 1, Duration: 5},
		{ID: 2, Duration: 3},
		{ID: 3, Duration: 8},
		{ID: 4, Duration: 2},
	}
}

func randomCustomers(rng *rand.Rand, n int) []domain.Customer {
	customers := make([]domain.Customer, n)
	for i := range customers {
		customers[i] = domain.Customer{ID: int64(100 + i), Duration: rng.Int63n(20) + 1}
	}
	return customers
}

func TestOptimize_GenomeShape(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		n := rng.Intn(30) + 1
		windowCount := rng.Intn(6) + 1
		customers := randomCustomers(rng, n)

		solution, err := Optimize(customers, windowCount, Parameters{PopulationSize: 8, Generations: 20, MutationRate: 0.2}, rng)
		require.NoError(t, err)
		require.Len(t, solution.Genome, n)
		for _, window := range solution.Genome {
			require.GreaterOrEqual(t, window, 0)
			require.Less(t, window, windowCount)
		}
		require.Len(t, solution.Windows, windowCount)
		require.Equal(t, Fitness(solution.Genome, customers, windowCount), solution.Fitness)
	}
}

func TestOptimize_BestFitnessNeverIncreases(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	customers := randomCustomers(rng, 25)

	for _, mutationRate := range []float64{0, 0.1, 0.5, 1} {
		solution, err := Optimize(customers, 4, Parameters{PopulationSize: 12, Generations: 60, MutationRate: mutationRate}, rng)
		require.NoError(t, err)
		require.Len(t, solution.History, 60)

		for i := 1; i < len(solution.History); i++ {
			require.LessOrEqual(t, solution.History[i], solution.History[i-1], "mutationRate=%v generation=%d", mutationRate, i)
		}
		// 上一代的最佳个体作为精英保留到了最终种群
		require.LessOrEqual(t, solution.Fitness, solution.History[len(solution.History)-1])
	}
}

func TestOptimize_FitnessBounds(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		customers := randomCustomers(rng, 15)
		windowCount := rng.Intn(5) + 1

		solution, err := Optimize(customers, windowCount, DefaultParameters(), rng)
		require.NoError(t, err)
		require.GreaterOrEqual(t, solution.Fitness, LowerBound(customers, windowCount))
		require.LessOrEqual(t, solution.Fitness, TotalDuration(customers))
	}
}

func TestOptimize_SingleWindow(t *testing.T) {
	customers := exampleCustomers()
	rng := rand.New(rand.NewSource(1))

	solution, err := Optimize(customers, 1, DefaultParameters(), rng)
	require.NoError(t, err)
	require.Equal(t, int64(18), solution.Fitness)
	require.Equal(t, Genome{0, 0, 0, 0}, solution.Genome)
	require.Equal(t, [][]int64{{1, 2, 3, 4}}, solution.Windows)
	for _, best := range solution.History {
		require.Equal(t, int64(18), best)
	}
}

func TestOptimize_SingleCustomer(t *testing.T) {
	customers := []domain.Customer{{ID: 42, Duration: 7}}

	solution, err := Optimize(customers, 1, DefaultParameters(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Equal(t, Genome{0}, solution.Genome)
	require.Equal(t, int64(7), solution.Fitness)
	require.Equal(t, [][]int64{{42}}, solution.Windows)

	// 多个窗口时交叉只能复制父本，不能出错
	solution, err = Optimize(customers, 3, DefaultParameters(), rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	require.Len(t, solution.Genome, 1)
	require.Equal(t, int64(7), solution.Fitness)
}

func TestOptimize_ReachesOptimumOnSmallInstance(t *testing.T) {
	customers := exampleCustomers()

	for seed := int64(1); seed <= 5; seed++ {
		solution, err := Optimize(customers, 2, Parameters{PopulationSize: 10, Generations: 100, MutationRate: 0.1}, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		require.Equal(t, int64(10), solution.Fitness, "seed=%d", seed)

		durations := map[int64]int64{1: 5, 2: 3, 3: 8, 4: 2}
		loads := WindowLoads(solution.Genome, customers, 2)
		for i, window := range solution.Windows {
			var sum int64
			for _, id := range window {
				sum += durations[id]
			}
			require.Equal(t, loads[i], sum)
		}
		require.Equal(t, int64(10), max(loads[0], loads[1]))
	}
}

func TestOptimize_ZeroGenerations(t *testing.T) {
	customers := exampleCustomers()

	solution, err := Optimize(customers, 2, Parameters{PopulationSize: 4, Generations: 0, MutationRate: 0.1}, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	require.Empty(t, solution.History)
	require.Len(t, solution.Genome, 4)
	require.Equal(t, Fitness(solution.Genome, customers, 2), solution.Fitness)
}

func TestOptimize_SmallPopulations(t *testing.T) {
	customers := exampleCustomers()

	for _, popSize := range []int{2, 3} {
		solution, err := Optimize(customers, 2, Parameters{PopulationSize: popSize, Generations: 30, MutationRate: 0.3}, rand.New(rand.NewSource(5)))
		require.NoError(t, err)
		require.Len(t, solution.History, 30)
	}
}

func TestOptimize_SameSeedSameResult(t *testing.T) {
	customers := randomCustomers(rand.New(rand.NewSource(11)), 20)
	params := Parameters{PopulationSize: 10, Generations: 50, MutationRate: 0.1}

	first, err := Optimize(customers, 3, params, rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	second, err := Optimize(customers, 3, params, rand.New(rand.NewSource(99)))
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestOptimize_InvalidConfiguration(t *testing.T) {
	customers := exampleCustomers()
	params := DefaultParameters()
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name        string
		customers   []domain.Customer
		windowCount int
		params      Parameters
		rng         *rand.Rand
	}{
		{"zero windows", customers, 0, params, rng},
		{"negative windows", customers, -2, params, rng},
		{"empty customers", []domain.Customer{}, 2, params, rng},
		{"nil customers", nil, 2, params, rng},
		{"zero population", customers, 2, Parameters{PopulationSize: 0, Generations: 10, MutationRate: 0.1}, rng},
		{"population of one", customers, 2, Parameters{PopulationSize: 1, Generations: 10, MutationRate: 0.1}, rng},
		{"negative generations", customers, 2, Parameters{PopulationSize: 10, Generations: -1, MutationRate: 0.1}, rng},
		{"mutation rate above one", customers, 2, Parameters{PopulationSize: 10, Generations: 10, MutationRate: 1.5}, rng},
		{"negative mutation rate", customers, 2, Parameters{PopulationSize: 10, Generations: 10, MutationRate: -0.1}, rng},
		{"NaN mutation rate", customers, 2, Parameters{PopulationSize: 10, Generations: 10, MutationRate: math.NaN()}, rng},
		{"zero duration", []domain.Customer{{ID: 1, Duration: 0}}, 2, params, rng},
		{"nil rng", customers, 2, params, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			solution, err := Optimize(tt.customers, tt.windowCount, tt.params, tt.rng)
			require.ErrorIs(t, err, ErrInvalidConfiguration)
			require.Nil(t, solution)
		})
	}
}

func TestDefaultParameters(t *testing.T) {
	params := DefaultParameters()

	require.Equal(t, 10, params.PopulationSize)
	require.Equal(t, 100, params.Generations)
	require.Equal(t, 0.1, params.MutationRate)
	require.NoError(t, params.Validate())
}

func cloneGenomes(pop []Genome) []Genome {
	clones := make([]Genome, len(pop))
	for i, g := range pop {
		clones[i] = append(Genome(nil), g...)
	}
	return clones
}

func TestNextGeneration_ElitesAreNotModified(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	customers := randomCustomers(rng, 12)
	windowCount := 3

	pop := make([]Genome, 8)
	for i := range pop {
		pop[i] = randomInitGenome(len(customers), windowCount, rng)
	}

	for gen := 0; gen < 20; gen++ {
		before := cloneGenomes(pop)

		// 变异概率为 1 时每个子代的每个位点都会被重新赋值
		next, best := nextGeneration(pop, customers, windowCount, 1.0, rng)
		require.Equal(t, before, pop, "generation %d", gen)
		require.Len(t, next, len(pop))

		bestBefore := Fitness(before[0], customers, windowCount)
		for _, g := range before[1:] {
			bestBefore = min(bestBefore, Fitness(g, customers, windowCount))
		}
		require.Equal(t, bestBefore, best)

		// 精英原样进入下一代，并且没有子代与任何上一代染色体共享底层数组
		eliteCount := len(pop) / 2
		for i := 0; i < eliteCount; i++ {
			require.Contains(t, before, next[i])
		}
		for _, child := range next[eliteCount:] {
			for _, g := range pop {
				require.NotSame(t, &g[0], &child[0])
			}
		}

		pop = next
	}
}
