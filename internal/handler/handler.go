package handler

import (
	"context"
	"math/rand"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/config"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/domain"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/optimizer"
)

// Store 由 repository.Repository 实现
type Store interface {
	GetUserByID(id int64) (*domain.User, error)
	GetUserByUsername(username string) (*domain.User, error)
	GetAllUsers() ([]*domain.User, error)
	CreateUser(user *domain.User) error
	InsertOptimizationRun(run *domain.OptimizationRun) error
	GetOptimizationRunByID(id int64) (*domain.OptimizationRun, error)
	GetOptimizationRunsByUserID(userID int64) ([]*domain.OptimizationRun, error)
	DeleteOptimizationRun(id int64) error
}

// SolutionCache 由 cache.SolutionCache 实现，未命中时返回 cache.ErrMiss
type SolutionCache interface {
	Get(ctx context.Context, key string) (*optimizer.Solution, error)
	Set(ctx context.Context, key string, solution *optimizer.Solution) error
}

// MailPublisher 由 mailqueue.Publisher 实现
type MailPublisher interface {
	Publish(ctx context.Context, msg domain.MailMessage) error
}

type Handler struct {
	validate      *validator.Validate
	config        *config.Config
	repository    Store
	translator    ut.Translator
	mailPublisher MailPublisher
	solutionCache SolutionCache // 为 nil 时不使用缓存
	newRand       func(seed *int64) *rand.Rand

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo Store, mailPublisher MailPublisher, solutionCache SolutionCache) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:      validate,
		config:        cfg,
		repository:    repo,
		translator:    trans,
		mailPublisher: mailPublisher,
		solutionCache: solutionCache,
		newRand:       newRand,

		Mux: chi.NewRouter(),
	}, nil
}

// 每次运行使用独立的随机数生成器，避免并发请求共享状态
func newRand(seed *int64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewSource(*seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 无需登录即可使用的分配接口，不保存结果
	h.Mux.Post("/optimize", h.Optimize)

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.myInfo)

		r.Get("/my-info", h.GetMyInfo)

		r.Route("/users", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Get("/", h.GetAllUserInfo)
			r.Post("/", h.CreateUser)
		})

		r.Route("/runs", func(r chi.Router) {
			r.Post("/", h.CreateOptimizationRun)
			r.Get("/", h.GetMyOptimizationRuns)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.optimizationRun)
				r.Get("/", h.GetOptimizationRun)
				r.Delete("/", h.DeleteOptimizationRun)
				r.Post("/report", h.SendOptimizationRunReport)
			})
		})
	})
}
