package model

import "strings"

// IDSet 有序、去重的 ID 集合，用于字段引用计数
//
// 所有修改操作返回新切片，不共享底层数组。
type IDSet []string

// NewIDSet 创建集合，忽略空串与重复项
func NewIDSet(ids ...string) IDSet {
	var s IDSet
	for _, id := range ids {
		s = s.Add(id)
	}
	return s
}

// Has 判断是否包含 id
func (s IDSet) Has(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Add 返回加入 id 后的集合
func (s IDSet) Add(id string) IDSet {
	if id == "" || s.Has(id) {
		return s
	}
	out := make(IDSet, 0, len(s)+1)
	out = append(out, s...)
	return append(out, id)
}

// Remove 返回移除 id 后的集合
func (s IDSet) Remove(id string) IDSet {
	if !s.Has(id) {
		return s
	}
	out := make(IDSet, 0, len(s))
	for _, v := range s {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// IsEmpty 集合为空时字段应被删除
func (s IDSet) IsEmpty() bool {
	return len(s) == 0
}

func (s IDSet) Len() int {
	return len(s)
}

// UniqueStrings 去除首尾空白后去重，保留首次出现的顺序
func UniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
