package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/service-window/backend/internal/domain"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/optimizer"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/repository"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/utils"
)

// 表头别名，中英文均可
var (
	idHeaders       = []string{"id", "编号", "顾客编号"}
	durationHeaders = []string{"duration", "服务时长", "时长"}
)

func findColumn(headers []string, aliases []string) int {
	for i, header := range headers {
		header = strings.ToLower(strings.TrimSpace(header))
		for _, alias := range aliases {
			if header == alias {
				return i
			}
		}
	}
	return -1
}

// ReadCustomersCSV 读取顾客列表，第一行为表头
func ReadCustomersCSV(r io.Reader) ([]domain.Customer, error) {
	reader := csv.NewReader(r)

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	idCol := findColumn(headers, idHeaders)
	durationCol := findColumn(headers, durationHeaders)
	if idCol < 0 || durationCol < 0 {
		return nil, errors.New("没有找到编号列或服务时长列")
	}

	customers := make([]domain.Customer, 0)
	line := 1
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("读取文件失败: %w", err)
		}
		line++

		id, err := strconv.ParseInt(strings.TrimSpace(row[idCol]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行的编号不是整数", line)
		}
		duration, err := strconv.ParseInt(strings.TrimSpace(row[durationCol]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行的服务时长不是整数", line)
		}
		if duration <= 0 {
			return nil, fmt.Errorf("第 %d 行的服务时长必须为正数", line)
		}

		customers = append(customers, domain.Customer{ID: id, Duration: duration})
	}

	if len(customers) == 0 {
		return nil, errors.New("文件中没有顾客数据")
	}

	return customers, nil
}

// NewOptimizationRun 运行遗传算法并构造待保存的运行记录
func NewOptimizationRun(userID int64, customers []domain.Customer, windowCount int, params optimizer.Parameters, rng *rand.Rand) (*domain.OptimizationRun, error) {
	solution, err := optimizer.Optimize(customers, windowCount, params, rng)
	if err != nil {
		return nil, err
	}

	run := &domain.OptimizationRun{
		CreatedBy:      userID,
		WindowCount:    int32(windowCount),
		PopulationSize: int32(params.PopulationSize),
		Generations:    int32(params.Generations),
		MutationRate:   params.MutationRate,
		Fitness:        solution.Fitness,
		LowerBound:     optimizer.LowerBound(customers, windowCount),
		Customers:      make([]domain.OptimizationRunCustomer, len(customers)),
	}
	for i, c := range customers {
		run.Customers[i] = domain.OptimizationRunCustomer{
			Position:    int32(i),
			CustomerID:  c.ID,
			Duration:    c.Duration,
			WindowIndex: int32(solution.Genome[i]),
		}
	}

	if err := utils.ValidateOptimizationRun(run); err != nil {
		return nil, err
	}

	return run, nil
}

// SeedFromCSV 导入 CSV 中的顾客，运行一次分配并保存到 userID 名下
func SeedFromCSV(r *repository.Repository, path string, userID int64, windowCount int, params optimizer.Parameters, rng *rand.Rand) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("打开文件失败: %w", err)
	}
	defer file.Close()

	customers, err := ReadCustomersCSV(file)
	if err != nil {
		return err
	}

	run, err := NewOptimizationRun(userID, customers, windowCount, params, rng)
	if err != nil {
		return err
	}

	if err := r.InsertOptimizationRun(run); err != nil {
		return err
	}

	slog.Info("导入顾客数据成功", "run_id", run.ID, "customers", len(customers), "fitness", run.Fitness, "lower_bound", run.LowerBound)
	return nil
}
