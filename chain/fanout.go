package chain

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/favbox/limitchain/internal/gmap"
	"github.com/favbox/limitchain/internal/safe"
)

// fanOut 并发执行 n 次 fn，等待全部完成后按下标顺序返回结果。
//
// 某一次失败不会取消其他调用，返回第一个错误；fn 内的 panic 转换为错误。
func fanOut[T any](ctx context.Context, n int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	results := make([]T, n)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			return safe.Call(func() error {
				r, err := fn(ctx, i)
				if err != nil {
					return fmt.Errorf("fan-out call %d: %w", i, err)
				}
				results[i] = r
				return nil
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// indexedKey 可以解析为非负整数的输入键。
type indexedKey struct {
	key   string
	index uint64
}

// splitIndexedInputs 拆出键为非负整数、值为 JSON 对象的子输入。
//
// 子输入按数值下标升序排列；值不是合法 JSON 对象的键记录警告后跳过，并保留在 rest 中。
func splitIndexedInputs(typ string, inputs map[string]string) (subs []map[string]string, rest map[string]string) {
	var keys []indexedKey
	for k := range inputs {
		if idx, err := strconv.ParseUint(k, 10, 64); err == nil {
			keys = append(keys, indexedKey{key: k, index: idx})
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].index != keys[j].index {
			return keys[i].index < keys[j].index
		}
		return keys[i].key < keys[j].key
	})

	rest = gmap.Concat(inputs)

	for _, k := range keys {
		var sub map[string]string
		if err := sonic.UnmarshalString(inputs[k.key], &sub); err != nil || sub == nil {
			logrus.WithFields(logrus.Fields{
				"chain": typ,
				"key":   k.key,
			}).Warnf("skip indexed input, value is not a json object: %q", inputs[k.key])
			continue
		}

		subs = append(subs, sub)
		delete(rest, k.key)
	}

	return subs, rest
}
