package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pdfchat/internal/rag"
)

// classify wraps a provider error with the matching rag sentinel so callers can
// decide on retries and response codes without looking at message text.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", rag.ErrTransientBackend, err)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return classifyHTTPStatus(gerr.Code, err)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyHTTPStatus(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyHTTPStatus(reqErr.HTTPStatusCode, err)
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted:
			return fmt.Errorf("%w: %w", rag.ErrRateLimited, err)
		case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted, codes.Internal:
			return fmt.Errorf("%w: %w", rag.ErrTransientBackend, err)
		}
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", rag.ErrTransientBackend, err)
	}
	return err
}

func classifyHTTPStatus(code int, err error) error {
	switch {
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", rag.ErrRateLimited, err)
	case code == http.StatusRequestTimeout, code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w", rag.ErrTransientBackend, err)
	}
	return err
}
