// internal/blockchain/solbc/errors.go
package solbc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

var (
	// ErrNoEndpoints возникает, когда пул создан без RPC адресов
	ErrNoEndpoints = errors.New("no RPC endpoints configured")

	// ErrRateLimit возникает при превышении лимита запросов на стороне узла
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrUnknownStrategy возникает при неизвестной стратегии выбора узла
	ErrUnknownStrategy = errors.New("unknown endpoint strategy")
)

// RPCError представляет ошибку RPC с дополнительным контекстом
type RPCError struct {
	Err      error
	Endpoint string
	Method   string
}

// Error реализует интерфейс error
func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error [%s] at %s: %v", e.Method, e.Endpoint, e.Err)
}

// Unwrap возвращает оригинальную ошибку
func (e *RPCError) Unwrap() error {
	return e.Err
}

// NewRPCError создает новую ошибку RPC. Адрес узла маскируется.
func NewRPCError(err error, endpoint, method string) error {
	if isRateLimited(err) {
		err = fmt.Errorf("%w: %v", ErrRateLimit, err)
	}
	return &RPCError{
		Err:      err,
		Endpoint: MaskURL(endpoint),
		Method:   method,
	}
}

// IsRPCError сообщает, произошла ли ошибка на уровне обращения к узлу.
func IsRPCError(err error) bool {
	var rpcErr *RPCError
	return errors.As(err, &rpcErr)
}

func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var jerr *jsonrpc.RPCError
	if errors.As(err, &jerr) && jerr.Code == 429 {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}
