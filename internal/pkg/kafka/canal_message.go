package kafka

import (
	"fmt"
	"strconv"
)

// Canal 事件类型
const (
	INSERT = "INSERT"
	UPDATE = "UPDATE"
	DELETE = "DELETE"
)

// CanalMessage Canal 推送到 Kafka 的 JSON 数据结构
type CanalMessage struct {
	ID       int64    `json:"id"`
	Database string   `json:"database"`
	Table    string   `json:"table"`
	PKNames  []string `json:"pkNames"`
	IsDDL    bool     `json:"isDdl"`
	Type     string   `json:"type"`
	ES       int64    `json:"es"`
	TS       int64    `json:"ts"`

	// Data 变更后的数据，DELETE 时为被删除的行
	Data []map[string]interface{} `json:"data"`

	// Old 变更前被修改的字段
	Old []map[string]interface{} `json:"old"`
}

// ToUint64 Canal 把所有列都序列化为字符串，这里兼容字符串与数字两种形式
func ToUint64(v interface{}) (uint64, error) {
	switch val := v.(type) {
	case string:
		return strconv.ParseUint(val, 10, 64)
	case float64:
		if val < 0 {
			return 0, fmt.Errorf("negative id %v", val)
		}
		return uint64(val), nil
	case nil:
		return 0, fmt.Errorf("missing value")
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
