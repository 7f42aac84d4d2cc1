package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/service-window/backend/internal/domain"
)

// parseOptimizeForm 解析表单形式的请求：
// num_windows、num_customers，以及第 i 个顾客的 customer{i}_id 和 customer{i}_duration（i 从 1 开始）
// 调优参数 population_size、generations、mutation_rate、seed 均为可选
func (h *Handler) parseOptimizeForm(r *http.Request) (*optimizeRequest, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxRequestBodyBytes); err != nil {
			return nil, fmt.Errorf("无法解析表单: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("无法解析表单: %w", err)
	}

	windowCount, err := formInt(r, "num_windows")
	if err != nil {
		return nil, err
	}
	customerCount, err := formInt(r, "num_customers")
	if err != nil {
		return nil, err
	}
	if customerCount < 0 {
		return nil, fmt.Errorf("顾客数量不能为负数")
	}
	if customerCount > int64(h.config.Optimizer.MaxCustomers) {
		return nil, fmt.Errorf("顾客数量不能超过 %d", h.config.Optimizer.MaxCustomers)
	}
	if windowCount > int64(h.config.Optimizer.MaxWindows) {
		return nil, fmt.Errorf("窗口数量不能超过 %d", h.config.Optimizer.MaxWindows)
	}

	req := &optimizeRequest{
		WindowCount: int(windowCount),
		Customers:   make([]domain.Customer, 0, customerCount),
		Parameters:  h.defaultParameters(),
	}

	for i := 1; i <= int(customerCount); i++ {
		id, err := formInt(r, fmt.Sprintf("customer%d_id", i))
		if err != nil {
			return nil, err
		}
		duration, err := formInt(r, fmt.Sprintf("customer%d_duration", i))
		if err != nil {
			return nil, err
		}
		req.Customers = append(req.Customers, domain.Customer{ID: id, Duration: duration})
	}

	// 可选的调优参数
	if r.Form.Get("population_size") != "" {
		v, err := formInt(r, "population_size")
		if err != nil {
			return nil, err
		}
		req.Parameters.PopulationSize = int(v)
	}
	if r.Form.Get("generations") != "" {
		v, err := formInt(r, "generations")
		if err != nil {
			return nil, err
		}
		req.Parameters.Generations = int(v)
	}
	if s := r.Form.Get("mutation_rate"); s != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("字段 mutation_rate 必须是数字")
		}
		req.Parameters.MutationRate = v
	}
	if r.Form.Get("seed") != "" {
		v, err := formInt(r, "seed")
		if err != nil {
			return nil, err
		}
		req.Seed = &v
	}

	return req, nil
}

func formInt(r *http.Request, name string) (int64, error) {
	s := strings.TrimSpace(r.Form.Get(name))
	if s == "" {
		return 0, fmt.Errorf("缺少字段 %s", name)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("字段 %s 必须是整数", name)
	}
	return v, nil
}
