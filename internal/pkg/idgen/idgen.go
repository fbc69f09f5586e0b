// Package idgen 生成带前缀的实体 ID
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// 实体 ID 前缀
const (
	PrefixProject             = "p_"
	PrefixLink                = "l_"
	PrefixField               = "f_"
	PrefixStage               = "s_"
	PrefixTask                = "t_"
	PrefixTimelineItem        = "ti_"
	PrefixStakeholder         = "stk_"
	PrefixTradeLot            = "lot_"
	PrefixReport              = "r_"
	PrefixComment             = "c_"
	PrefixDocumentTemplate    = "t_"
	PrefixTimelineTemplate    = "tt_"
	PrefixStakeholderTemplate = "stt_"
	PrefixTradeLotTemplate    = "tlt_"
)

// Generator 根据前缀生成新 ID
type Generator func(prefix string) string

// UUID 返回基于随机 UUID 的生成器
func UUID() Generator {
	return func(prefix string) string {
		return prefix + uuid.NewString()
	}
}

// Sequence 返回确定性的递增生成器，测试使用
func Sequence() Generator {
	var n uint64
	return func(prefix string) string {
		return prefix + strconv.FormatUint(atomic.AddUint64(&n, 1), 10)
	}
}
