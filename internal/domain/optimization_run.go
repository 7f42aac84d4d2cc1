package domain

import "time"

type OptimizationRunCustomer struct {
	Position    int32 `json:"position"`
	CustomerID  int64 `json:"customerID"`
	Duration    int64 `json:"duration"`
	WindowIndex int32 `json:"windowIndex"`
}

// OptimizationRun: 一次持久化的分配结果
type OptimizationRun struct {
	ID             int64                     `json:"id"`
	CreatedBy      int64                     `json:"createdBy"`
	WindowCount    int32                     `json:"windowCount"`
	PopulationSize int32                     `json:"populationSize"`
	Generations    int32                     `json:"generations"`
	MutationRate   float64                   `json:"mutationRate"`
	Seed           *int64                    `json:"seed"` // 为空表示未固定种子
	Fitness        int64                     `json:"fitness"`
	LowerBound     int64                     `json:"lowerBound"`
	Customers      []OptimizationRunCustomer `json:"customers"`
	CreatedAt      time.Time                 `json:"createdAt"`
	Version        int32                     `json:"-"`
}

// InputCustomers 按位点顺序还原输入
func (r *OptimizationRun) InputCustomers() []Customer {
	customers := make([]Customer, len(r.Customers))
	for i, c := range r.Customers {
		customers[i] = Customer{ID: c.CustomerID, Duration: c.Duration}
	}
	return customers
}

// Windows 按窗口分组顾客 ID
func (r *OptimizationRun) Windows() [][]int64 {
	windows := make([][]int64, r.WindowCount)
	for i := range windows {
		windows[i] = make([]int64, 0)
	}
	for _, c := range r.Customers {
		windows[c.WindowIndex] = append(windows[c.WindowIndex], c.CustomerID)
	}
	return windows
}

// WindowLoads 每个窗口的服务时长之和
func (r *OptimizationRun) WindowLoads() []int64 {
	loads := make([]int64, r.WindowCount)
	for _, c := range r.Customers {
		loads[c.WindowIndex] += c.Duration
	}
	return loads
}
