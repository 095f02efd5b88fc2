package assert

import "fmt"

func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
}

func NotEmptyStr(str string) {
	if str == "" {
		panic("expected string to be non-empty")
	}
}

// Unique panics when key was already seen.
func Unique[K comparable, V any](m map[K]V, key K) {
	if _, exists := m[key]; exists {
		panic(fmt.Sprintf("duplicate key %v", key))
	}
}
