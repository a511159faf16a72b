package rpc

import (
	"errors"
	"fmt"

	"github.com/ammcore/ammd/internal/core/amount"
	"github.com/ammcore/ammd/internal/core/ledger"
	"github.com/ammcore/ammd/internal/core/pool"
)

// RpcError is the error object embedded in a JSON response result.
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Message     string `json:"error_message,omitempty"`
}

func (e RpcError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorString
}

// RPC error codes. The negative codes follow JSON-RPC conventions, the
// positive ones are engine rejections surfaced to clients.
const (
	RpcMETHOD_NOT_FOUND = -32601
	RpcINVALID_PARAMS   = -32602
	RpcINTERNAL         = -32603
	RpcPARSE_ERROR      = -32700

	RpcFORBIDDEN          = 30
	RpcZERO_AMOUNT        = 31
	RpcINSUFFICIENT_FUNDS = 32
	RpcPOOL_EMPTY         = 33
	RpcNO_PRICE           = 34
	RpcEXCEEDS_RESERVE    = 35
	RpcARITHMETIC         = 36
	RpcNO_HISTORY         = 37
)

func NewRpcError(code int, errorString, message string) *RpcError {
	return &RpcError{
		Code:        code,
		ErrorString: errorString,
		Message:     message,
	}
}

func RpcErrorMethodNotFound(method string) *RpcError {
	return NewRpcError(RpcMETHOD_NOT_FOUND, "unknownCmd", fmt.Sprintf("Unknown method: %s", method))
}

func RpcErrorInvalidParams(message string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", message)
}

func RpcErrorInternal(message string) *RpcError {
	return NewRpcError(RpcINTERNAL, "internal", message)
}

// engineError maps a pool engine rejection to its RPC error object.
func engineError(err error) *RpcError {
	switch {
	case errors.Is(err, pool.ErrUnauthorized):
		return NewRpcError(RpcFORBIDDEN, "forbidden", "Account is not an operator")
	case errors.Is(err, pool.ErrZeroAmount):
		return NewRpcError(RpcZERO_AMOUNT, "zeroAmount", "Amount must be greater than zero")
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return NewRpcError(RpcINSUFFICIENT_FUNDS, "insufficientFunds", "Account balance is too low")
	case errors.Is(err, pool.ErrPoolUninitialized), errors.Is(err, pool.ErrPoolInconsistent):
		return NewRpcError(RpcPOOL_EMPTY, "poolEmpty", "Pool has no liquidity")
	case errors.Is(err, pool.ErrNoPrice):
		return NewRpcError(RpcNO_PRICE, "noPrice", "Pool cannot quote this trade")
	case errors.Is(err, pool.ErrExceedsReserve):
		return NewRpcError(RpcEXCEEDS_RESERVE, "exceedsReserve", "Trade exceeds pool reserve")
	case errors.Is(err, amount.ErrOverflow), errors.Is(err, amount.ErrUnderflow),
		errors.Is(err, amount.ErrDivisionByZero):
		return NewRpcError(RpcARITHMETIC, "arithmeticError", err.Error())
	default:
		return RpcErrorInternal(err.Error())
	}
}
