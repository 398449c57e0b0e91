package generic

// PtrOf 返回传入值 v 的指针。
// 用于需要获取值指针的场景，如配置结构体字段初始化。
//
// 典型场景:
//
//	config := Config{
//	    Temperature: PtrOf(float32(0.7)),
//	}
func PtrOf[T any](v T) *T {
	return &v
}

// Reverse 返回倒序排列的新切片，原切片不变。
func Reverse[S ~[]E, E any](s S) S {
	d := make(S, len(s))
	for i := 0; i < len(s); i++ {
		j := len(s) - i - 1
		d[j] = s[i]
	}

	return d
}

// Dedup 按首次出现的顺序去重。
//
// 示例：
//
//	Dedup([]string{"b", "a", "b"}) // []string{"b", "a"}
func Dedup[E comparable](s []E) []E {
	seen := make(map[E]struct{}, len(s))
	result := make([]E, 0, len(s))
	for _, e := range s {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		result = append(result, e)
	}

	return result
}
