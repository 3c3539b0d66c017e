package commandv1

import (
	"context"
	stderrors "errors"

	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
)

// ErrorKind classifies a failed command for the caller.
type ErrorKind string

const (
	KindValidation ErrorKind = "ValidationError"
	KindNotFound   ErrorKind = "OrderNotFound"
	KindTimeout    ErrorKind = "Timeout"
	KindTransport  ErrorKind = "TransportError"
	KindInternal   ErrorKind = "InternalError"
)

// Code returns the error code carried by errors of this kind.
func (k ErrorKind) Code() errors.ErrorCode {
	switch k {
	case KindValidation:
		return errors.ValidationError
	case KindNotFound:
		return errors.OrderNotFoundError
	case KindTimeout:
		return errors.TimeoutError
	case KindTransport:
		return errors.TransportError
	default:
		return errors.GeneralInternalServerError
	}
}

// KindOf maps any error onto the kind reported to callers.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	switch code := errors.CodeOf(err); {
	case code == errors.ValidationError:
		return KindValidation
	case code == errors.OrderNotFoundError:
		return KindNotFound
	case code == errors.TimeoutError:
		return KindTimeout
	case code == errors.TransportError, errors.IsRedisCode(code):
		return KindTransport
	}

	switch {
	case stderrors.Is(err, orderbookv1.ErrOrderNotFound):
		return KindNotFound
	case stderrors.Is(err, orderbookv1.ErrInvalidPrice),
		stderrors.Is(err, orderbookv1.ErrInvalidQuantity),
		stderrors.Is(err, orderbookv1.ErrInvalidSide),
		stderrors.Is(err, orderbookv1.ErrEmptyOrderID):
		return KindValidation
	case stderrors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	}

	return KindInternal
}

// messageOf prefers the caller facing message of ErrorDetails over the full chain.
func messageOf(err error) string {
	var details *errors.ErrorDetails
	if stderrors.As(err, &details) {
		return details.Message
	}
	return err.Error()
}
