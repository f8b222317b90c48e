package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"plantracker/internal/auth"
	"plantracker/internal/store"
)

const initDataHeader = "X-Telegram-Init-Data"

// RequireAuth authenticates the request and populates AuthContext.
//
// Two credentials are accepted: a Bearer session token issued by the
// auth endpoint, or a raw Telegram Mini App init data header no older
// than initDataMaxAge. The init data path upserts the user profile on
// every request, so a first-time user exists by the time a handler
// runs.
func RequireAuth(tokens *auth.TokenManager, users *store.UserStore, botToken string, initDataMaxAge time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, ok := authenticate(r, tokens, users, botToken, initDataMaxAge)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error":"Unauthorized"}`)
				return
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, tokens *auth.TokenManager, users *store.UserStore, botToken string, initDataMaxAge time.Duration) (auth.AuthContext, bool) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		userID, err := tokens.Verify(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			return auth.AuthContext{}, false
		}
		u, err := users.GetByID(userID)
		if err != nil || u == nil {
			return auth.AuthContext{}, false
		}
		return auth.AuthContext{UserID: u.ID, TelegramID: u.TelegramID}, true
	}

	if initData := r.Header.Get(initDataHeader); initData != "" {
		tu, err := auth.VerifyInitData(initData, botToken, initDataMaxAge, time.Now())
		if err != nil {
			return auth.AuthContext{}, false
		}
		u, err := users.Upsert(fmt.Sprint(tu.ID), tu.FirstName, tu.LastName, tu.Username, tu.PhotoURL)
		if err != nil {
			return auth.AuthContext{}, false
		}
		return auth.AuthContext{UserID: u.ID, TelegramID: u.TelegramID}, true
	}

	return auth.AuthContext{}, false
}
