package verify

import (
	"go.uber.org/fx"

	"github.com/tomthoros/dash/cache"
	"github.com/tomthoros/dash/config"
	"github.com/tomthoros/dash/database"
)

// NewServiceInput 是 NewFxService 的输入
type NewServiceInput struct {
	fx.In

	Opts      *config.Options
	ExecCache *cache.ExecutionCache
	Store     *database.Store
}

// NewServiceOutput 是 NewFxService 的输出
type NewServiceOutput struct {
	fx.Out

	Service *Service
}

// NewFxService 为 fx 应用创建验证服务
func NewFxService(input NewServiceInput) NewServiceOutput {
	return NewServiceOutput{
		Service: NewService(input.Opts, input.ExecCache, input.Store),
	}
}

// Module 提供执行缓存、结论存储和验证服务。应用需要另外提供 *config.Options。
var Module = fx.Module("verify",
	fx.Provide(
		cache.NewFxExecutionCache, // 执行缓存
		database.NewFxStore,       // 结论存储
		NewFxService,              // 验证服务
	),
)
