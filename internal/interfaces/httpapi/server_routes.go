package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerAccountRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/auth/signup", handler.SignUp)
	mux.HandleFunc("POST /v1/auth/signin", handler.SignIn)
}

func registerPublicPickemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/weeks/current", handler.GetCurrentWeek)
	mux.HandleFunc("GET /v1/leaderboards/weekly", handler.GetWeeklyLeaderboard)
	mux.HandleFunc("GET /v1/leaderboards/all-time", handler.GetAllTimeLeaderboard)
}

func registerAuthorizedPickRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/picks/current", RequireAuth(verifier, http.HandlerFunc(handler.GetCurrentPicks)))
	mux.Handle("PUT /v1/picks/current", RequireAuth(verifier, http.HandlerFunc(handler.SaveCurrentPicks)))
	mux.Handle("GET /v1/picks/weeks/{weekID}", RequireAuth(verifier, http.HandlerFunc(handler.GetWeekPicks)))
}

func registerOutcomeRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.HandleFunc("GET /v1/outcomes/{gameID}", handler.GetOutcome)
	mux.Handle("PUT /v1/internal/outcomes/{gameID}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.SetOutcome)))
}
