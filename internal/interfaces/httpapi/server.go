package httpapi

import (
	"net/http"

	"github.com/riskibarqy/nhl-pickem/internal/platform/logging"
)

type RouterConfig struct {
	ServiceName        string
	CORSAllowedOrigins []string
	InternalJobToken   string
	// ManualOutcomes exposes the outcome routes. Feed mode derives outcomes from scores.
	ManualOutcomes bool
}

func NewRouter(handler *Handler, verifier TokenVerifier, logger *logging.Logger, cfg RouterConfig) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "nhl-pickem"
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerAccountRoutes(mux, handler)
	registerPublicPickemRoutes(mux, handler)
	registerAuthorizedPickRoutes(mux, handler, verifier)
	if cfg.ManualOutcomes {
		registerOutcomeRoutes(mux, handler, cfg.InternalJobToken)
	}

	return RequestTracing(cfg.ServiceName, RequestLogging(logger, CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, mux))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
