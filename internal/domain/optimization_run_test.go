package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptimizationRun_Windows(t *testing.T) {
	run := &OptimizationRun{
		WindowCount: 3,
		Customers: []OptimizationRunCustomer{
			{Position: 0, CustomerID: 11, Duration: 5, WindowIndex: 2},
			{Position: 1, CustomerID: 12, Duration: 3, WindowIndex: 0},
			{Position: 2, CustomerID: 13, Duration: 8, WindowIndex: 2},
		},
	}

	require.Equal(t, [][]int64{{12}, {}, {11, 13}}, run.Windows())
	require.Equal(t, []int64{3, 0, 13}, run.WindowLoads())
	require.Equal(t, []Customer{{ID: 11, Duration: 5}, {ID: 12, Duration: 3}, {ID: 13, Duration: 8}}, run.InputCustomers())
}
