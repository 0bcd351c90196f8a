// Package client 网关调用下游服务的 gRPC 适配器，负责把状态码还原为网关领域错误
package client

import (
	"fmt"

	"github.com/wyfcoding/ecommerce/internal/gateway/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// fromStatus notFound 指定 NotFound 对应的领域错误
func fromStatus(err error, notFound error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", notFound, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", domain.ErrProductAlreadyExists, st.Message())
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", domain.ErrProductInUse, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, st.Message())
	default:
		return fmt.Errorf("%w: %s: %s", domain.ErrUpstream, st.Code(), st.Message())
	}
}
