package model

import (
	"context"

	"github.com/favbox/limitchain/schema"
)

//go:generate mockgen -destination ../../internal/mock/components/model/Backend_mock.go --package model -source interface.go

// Backend 模型后端接口。
//
// 实现必须保持消息的顺序；停止词通过 WithStop 传入，语义由具体后端决定。
// Generation.Text 中每个候选对应一条消息，Text[0] 为规范结果；
// Generation.Info 填写后端能提供的用量与结束原因，没有时留空。
type Backend interface {
	Generate(ctx context.Context, messages []schema.Message, opts ...Option) (*schema.Generation, error)
}
