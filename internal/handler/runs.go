package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/service-window/backend/internal/domain"
)

type runDetail struct {
	Run         *domain.OptimizationRun `json:"run"`
	Windows     [][]int64               `json:"windows"`
	WindowLoads []int64                 `json:"windowLoads"`
}

func newRunDetail(run *domain.OptimizationRun) runDetail {
	return runDetail{
		Run:         run,
		Windows:     run.Windows(),
		WindowLoads: run.WindowLoads(),
	}
}

func (h *Handler) GetMyOptimizationRuns(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	runs, err := h.repository.GetOptimizationRunsByUserID(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取运行记录成功", runs)
}

func (h *Handler) GetOptimizationRun(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(OptimizationRunCtx).(*domain.OptimizationRun)

	h.successResponse(w, r, "获取运行记录成功", newRunDetail(run))
}

func (h *Handler) DeleteOptimizationRun(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(OptimizationRunCtx).(*domain.OptimizationRun)

	if err := h.repository.DeleteOptimizationRun(run.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除运行记录成功", nil)
}

// SendOptimizationRunReport 将运行结果通过邮件发送给当前用户
func (h *Handler) SendOptimizationRunReport(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	run := r.Context().Value(OptimizationRunCtx).(*domain.OptimizationRun)

	windows := run.Windows()
	loads := run.WindowLoads()

	data := domain.RunReportMailData{
		FullName:    myInfo.FullName,
		RunID:       run.ID,
		WindowCount: run.WindowCount,
		Fitness:     run.Fitness,
		LowerBound:  run.LowerBound,
		Windows:     make([]domain.RunReportWindow, len(windows)),
	}
	for i := range windows {
		data.Windows[i] = domain.RunReportWindow{
			Index:       i + 1, // 邮件中窗口从 1 开始编号
			Load:        loads[i],
			CustomerIDs: windows[i],
		}
	}

	// 发送邮件到消息队列中
	if err := h.mailPublisher.Publish(r.Context(), domain.MailMessage{
		Type: domain.MailTypeRunReport,
		To:   myInfo.Email,
		Data: data,
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "运行报告已通过邮件发送", nil)
}
