package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/service-window/backend/internal/config"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/optimizer"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/repository"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/seed"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var windowCount int
	var customerCount int
	var maxDuration int64
	var username string
	var file string
	var randSeed int64

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机运行记录, 3: 从 CSV 导入顾客并运行)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.IntVar(&windowCount, "windows", 3, "窗口数量")
	flag.IntVar(&customerCount, "customers", 20, "每条随机运行记录的顾客数量")
	flag.Int64Var(&maxDuration, "max-duration", 30, "随机顾客的最大服务时长")
	flag.StringVar(&username, "username", "", "运行记录所属的用户名，默认为初始管理员")
	flag.StringVar(&file, "file", "./internal/seed/data/customers.csv", "op 为 3 时读取的 CSV 文件")
	flag.Int64Var(&randSeed, "seed", time.Now().UnixNano(), "随机数种子")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	rng := rand.New(rand.NewSource(randSeed))
	params := optimizer.Parameters{
		PopulationSize: cfg.Optimizer.PopulationSize,
		Generations:    cfg.Optimizer.Generations,
		MutationRate:   cfg.Optimizer.MutationRate,
	}

	// 运行记录的所属用户
	ownerID := func() (int64, bool) {
		if username == "" {
			username = cfg.InitialAdmin.Username
		}
		owner, err := repo.GetUserByUsername(username)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("指定的用户不存在", slog.String("username", username))
			default:
				slog.Error("无法获取用户", slog.String("error", err.Error()))
			}
			return 0, false
		}
		return owner.ID, true
	}

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain, rng)
			if err != nil {
				slog.Error("无法生成随机用户", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateUser(user); err != nil {
				slog.Error("无法插入用户", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入用户成功", slog.Int("count", cnt))
	case 2:
		if n <= 0 || customerCount <= 0 || maxDuration <= 0 {
			slog.Error("请输入合法的记录数量、顾客数量和服务时长")
			return
		}

		userID, ok := ownerID()
		if !ok {
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			customers := utils.GenerateRandomCustomers(customerCount, maxDuration, rng)

			run, err := seed.NewOptimizationRun(userID, customers, windowCount, params, rng)
			if err != nil {
				slog.Error("无法生成运行记录", slog.String("error", err.Error()))
				continue
			}

			if err := repo.InsertOptimizationRun(run); err != nil {
				slog.Error("无法插入运行记录", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入运行记录成功", slog.Int("count", cnt))
	case 3:
		userID, ok := ownerID()
		if !ok {
			return
		}

		if err := seed.SeedFromCSV(repo, file, userID, windowCount, params, rng); err != nil {
			slog.Error("无法导入顾客数据", slog.String("error", err.Error()))
		}
	default:
		slog.Error("指定的操作非法")
	}
}
