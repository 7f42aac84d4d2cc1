package domain

// Customer: 顾客及其服务时长（时间单位），在输入解析后不再改变
type Customer struct {
	ID       int64 `json:"id"`
	Duration int64 `json:"duration"`
}
