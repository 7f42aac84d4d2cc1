package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sysu-ecnc-dev/service-window/backend/internal/cache"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/domain"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/optimizer"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/utils"
)

type optimizeRequest struct {
	WindowCount int
	Customers   []domain.Customer
	Parameters  optimizer.Parameters
	Seed        *int64
}

type optimizeResult struct {
	*optimizer.Solution
	WindowLoads []int64 `json:"windowLoads"`
	LowerBound  int64   `json:"lowerBound"`
	Cached      bool    `json:"cached"`
}

func (h *Handler) defaultParameters() optimizer.Parameters {
	return optimizer.Parameters{
		PopulationSize: h.config.Optimizer.PopulationSize,
		Generations:    h.config.Optimizer.Generations,
		MutationRate:   h.config.Optimizer.MutationRate,
	}
}

// parseOptimizeRequest 同时支持 JSON 和表单两种请求格式
func (h *Handler) parseOptimizeRequest(w http.ResponseWriter, r *http.Request) (*optimizeRequest, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") || strings.HasPrefix(contentType, "multipart/form-data") {
		return h.parseOptimizeForm(r)
	}

	var req struct {
		WindowCount int `json:"windowCount"`
		Customers   []struct {
			ID       int64 `json:"id"`
			Duration int64 `json:"duration"`
		} `json:"customers" validate:"required"`
		PopulationSize *int     `json:"populationSize"`
		Generations    *int     `json:"generations"`
		MutationRate   *float64 `json:"mutationRate"`
		Seed           *int64   `json:"seed"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		return nil, err
	}
	if err := h.validate.Struct(req); err != nil {
		return nil, err
	}

	// 未指定的参数使用配置中的默认值
	params := h.defaultParameters()
	if req.PopulationSize != nil {
		params.PopulationSize = *req.PopulationSize
	}
	if req.Generations != nil {
		params.Generations = *req.Generations
	}
	if req.MutationRate != nil {
		params.MutationRate = *req.MutationRate
	}

	customers := make([]domain.Customer, len(req.Customers))
	for i, c := range req.Customers {
		customers[i] = domain.Customer{ID: c.ID, Duration: c.Duration}
	}

	return &optimizeRequest{
		WindowCount: req.WindowCount,
		Customers:   customers,
		Parameters:  params,
		Seed:        req.Seed,
	}, nil
}

// checkLimits 限制单次请求的计算量
func (h *Handler) checkLimits(req *optimizeRequest) error {
	if len(req.Customers) > h.config.Optimizer.MaxCustomers {
		return fmt.Errorf("顾客数量不能超过 %d", h.config.Optimizer.MaxCustomers)
	}
	if req.WindowCount > h.config.Optimizer.MaxWindows {
		return fmt.Errorf("窗口数量不能超过 %d", h.config.Optimizer.MaxWindows)
	}
	if req.Parameters.PopulationSize > h.config.Optimizer.MaxPopulationSize {
		return fmt.Errorf("种群大小不能超过 %d", h.config.Optimizer.MaxPopulationSize)
	}
	if req.Parameters.Generations > h.config.Optimizer.MaxGenerations {
		return fmt.Errorf("迭代次数不能超过 %d", h.config.Optimizer.MaxGenerations)
	}
	return nil
}

// runOptimizer 运行遗传算法，固定种子的请求会先查询缓存
func (h *Handler) runOptimizer(ctx context.Context, req *optimizeRequest) (*optimizer.Solution, bool, error) {
	useCache := req.Seed != nil && h.solutionCache != nil

	var key string
	if useCache {
		key = cache.Key(req.Customers, req.WindowCount, req.Parameters, *req.Seed)

		solution, err := h.solutionCache.Get(ctx, key)
		switch {
		case err == nil:
			return solution, true, nil
		case errors.Is(err, cache.ErrMiss):
		default:
			// 缓存不可用时不影响计算
			slog.Warn("无法读取缓存", "key", key, "error", err)
		}
	}

	solution, err := optimizer.Optimize(req.Customers, req.WindowCount, req.Parameters, h.newRand(req.Seed))
	if err != nil {
		return nil, false, err
	}

	if useCache {
		if err := h.solutionCache.Set(ctx, key, solution); err != nil {
			slog.Warn("无法写入缓存", "key", key, "error", err)
		}
	}

	return solution, false, nil
}

func (h *Handler) optimize(w http.ResponseWriter, r *http.Request) (*optimizeRequest, *optimizeResult, bool) {
	req, err := h.parseOptimizeRequest(w, r)
	if err != nil {
		h.badRequest(w, r, err)
		return nil, nil, false
	}
	if err := h.checkLimits(req); err != nil {
		h.errorResponse(w, r, err.Error())
		return nil, nil, false
	}

	solution, cached, err := h.runOptimizer(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, optimizer.ErrInvalidConfiguration):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return nil, nil, false
	}

	return req, &optimizeResult{
		Solution:    solution,
		WindowLoads: optimizer.WindowLoads(solution.Genome, req.Customers, req.WindowCount),
		LowerBound:  optimizer.LowerBound(req.Customers, req.WindowCount),
		Cached:      cached,
	}, true
}

func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	_, result, ok := h.optimize(w, r)
	if !ok {
		return
	}

	h.successResponse(w, r, "分配成功", result)
}

func (h *Handler) CreateOptimizationRun(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	req, result, ok := h.optimize(w, r)
	if !ok {
		return
	}

	run := &domain.OptimizationRun{
		CreatedBy:      myInfo.ID,
		WindowCount:    int32(req.WindowCount),
		PopulationSize: int32(req.Parameters.PopulationSize),
		Generations:    int32(req.Parameters.Generations),
		MutationRate:   req.Parameters.MutationRate,
		Seed:           req.Seed,
		Fitness:        result.Fitness,
		LowerBound:     result.LowerBound,
		Customers:      make([]domain.OptimizationRunCustomer, len(req.Customers)),
	}
	for i, c := range req.Customers {
		run.Customers[i] = domain.OptimizationRunCustomer{
			Position:    int32(i),
			CustomerID:  c.ID,
			Duration:    c.Duration,
			WindowIndex: int32(result.Genome[i]),
		}
	}

	// 保存前再检查一次结果是否自洽
	if err := utils.ValidateOptimizationRun(run); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.InsertOptimizationRun(run); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "分配成功并已保存", newRunDetail(run))
}
