package http

import (
	"context"
	"net/http"
	"strconv"
)

// CustomerIDMiddleware resolves the signed-in customer from the session
// header the auth collaborator sets. Absent or malformed ids resolve to 0 (a
// guest); the core decides per operation whether guests are allowed.
func CustomerIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var customerID int64
		if raw := r.Header.Get("X-Customer-Id"); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
				customerID = id
			}
		}

		ctx := context.WithValue(r.Context(), "customer_id", customerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getCustomerIDFromContext(ctx context.Context) int64 {
	if customerID, ok := ctx.Value("customer_id").(int64); ok {
		return customerID
	}
	return 0
}
