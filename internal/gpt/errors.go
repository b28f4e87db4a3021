package gpt

import (
	"context"
	"errors"
	"net"
	"net/http"
	"syscall"

	"github.com/openai/openai-go"

	"github.com/ahmedmed7t/smartcookly/internal/domain"
)

// classifyError maps a chat request failure to a NetworkError kind.
func classifyError(err error) *domain.NetworkError {
	var ne *domain.NetworkError
	if errors.As(err, &ne) {
		return ne
	}
	return domain.NewNetworkError(kindOf(err), err)
}

func kindOf(err error) domain.ErrorKind {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusRequestTimeout:
			return domain.KindRequestTimeout
		case apiErr.StatusCode >= http.StatusInternalServerError:
			return domain.KindServerError
		default:
			return domain.KindOther
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return domain.KindRequestTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return domain.KindRequestTimeout
		}
		return domain.KindNoInternet
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ENETUNREACH) || errors.Is(err, syscall.EHOSTUNREACH) {
		return domain.KindNoInternet
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.KindRequestTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return domain.KindNoInternet
	}

	return domain.KindOther
}
