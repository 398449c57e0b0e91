// Package gmap 提供泛型 Map 工具函数。
package gmap

// Concat 合并多个 Map 为一个新 Map，键冲突时后面的值覆盖前面的值。
//
// 总是返回非 nil 的 Map，原 Map 不会被修改。
//
//	m := map[string]any{"a": 1, "b": 2}
//	Concat(m, nil)                    ⏩ map[string]any{"a": 1, "b": 2}
//	Concat(m, map[string]any{"b": 3}) ⏩ map[string]any{"a": 1, "b": 3}
func Concat[K comparable, V any](ms ...map[K]V) map[K]V {
	var size int
	for _, m := range ms {
		size += len(m)
	}

	ret := make(map[K]V, size)
	for _, m := range ms {
		for k, v := range m {
			ret[k] = v
		}
	}
	return ret
}

// MergeAbsent 把 src 中 dst 尚不存在的键复制到 dst，已有的键保持不变。
func MergeAbsent[K comparable, V any](dst, src map[K]V) {
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}

// Clone 浅拷贝 Map，m 为 nil 时返回 nil。
func Clone[K comparable, V any, M ~map[K]V](m M) M {
	if m == nil {
		return nil
	}

	r := make(M, len(m))
	for k, v := range m {
		r[k] = v
	}
	return r
}
