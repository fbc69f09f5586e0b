package utils

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

func ToJSON(v any) string {
	jsonData, err := json.Marshal(v)
	if err != nil {
		klog.Errorf("JSON序列化失败: %v", err)
		return ""
	}
	return string(jsonData)
}

// ToYAML 序列化为 YAML，失败时返回空串
func ToYAML(v any) string {
	data, err := yaml.Marshal(v)
	if err != nil {
		klog.Errorf("YAML序列化失败: %v", err)
		return ""
	}
	return string(data)
}
