package response

import (
	"bytes"
	"encoding/json"
)

// Resp 统一响应。Data 若为对象则字段平铺到顶层，与 success/code/message 并列
type Resp struct {
	Success bool
	Code    int
	Message string
	Reason  string
	Data    any
}

func (r Resp) MarshalJSON() ([]byte, error) {
	out := map[string]json.RawMessage{}
	if r.Data != nil {
		raw, err := json.Marshal(r.Data)
		if err != nil {
			return nil, err
		}
		if t := bytes.TrimSpace(raw); len(t) > 0 && t[0] == '{' {
			if err := json.Unmarshal(t, &out); err != nil {
				return nil, err
			}
		} else if !bytes.Equal(t, []byte("null")) {
			out["data"] = raw
		}
	}
	put := func(k string, v any) {
		b, _ := json.Marshal(v)
		out[k] = b
	}
	put("success", r.Success)
	put("code", r.Code)
	put("message", r.Message)
	if r.Reason != "" {
		put("reason", r.Reason)
	}
	return json.Marshal(out)
}

// New 构造函数；message 为空时回落到 code 默认文案
func New(code int, msg string, data any) Resp {
	if msg == "" {
		msg = CodeMsgMap[code]
	}
	return Resp{Success: code == CodeOK, Code: code, Message: msg, Data: data}
}

// OK 成功响应
func OK(data any) Resp {
	return New(CodeOK, "", data)
}

// OKMsg 成功响应并带提示文案
func OKMsg(msg string, data any) Resp {
	return New(CodeOK, msg, data)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	return New(code, customMsg, nil)
}

// Fail 失败响应并附带 reason
func Fail(code int, reason, msg string) Resp {
	r := New(code, msg, nil)
	r.Reason = reason
	return r
}
