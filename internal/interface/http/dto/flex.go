package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexFloat 接受JSON数字或数字字符串，如 12.5 或 "12.5"
type FlexFloat float64

// UnmarshalJSON 不接受NaN和±Inf
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	raw, err := numericText(data)
	if err != nil {
		return err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("invalid number %s", data)
	}
	*f = FlexFloat(v)
	return nil
}

// FlexInt 接受JSON整数或整数字符串，如 2001 或 "2001"
type FlexInt int

// UnmarshalJSON 小数部分必须为0
func (i *FlexInt) UnmarshalJSON(data []byte) error {
	raw, err := numericText(data)
	if err != nil {
		return err
	}
	if v, err := strconv.Atoi(raw); err == nil {
		*i = FlexInt(v)
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return fmt.Errorf("invalid integer %s", data)
	}
	*i = FlexInt(v)
	return nil
}

func numericText(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	return string(data), nil
}
