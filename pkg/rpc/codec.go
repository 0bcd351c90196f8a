// Package rpc 提供服务间 gRPC 调用使用的 JSON 编解码器
//
// 服务间消息是普通的 Go 结构体，通过 content-subtype "json" 传输，
// 服务端在 import 本包后即可识别 application/grpc+json 请求。
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// Name 编解码器名称，同时也是 gRPC content-subtype
const Name = "json"

func init() {
	encoding.RegisterCodec(Codec{})
}

// Codec 基于 encoding/json 的 gRPC 编解码器
type Codec struct{}

// Marshal 序列化
func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal 反序列化
func (Codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Name 返回编解码器名称
func (Codec) Name() string {
	return Name
}
