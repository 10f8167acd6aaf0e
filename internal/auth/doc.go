// Package auth provides authentication and authorization for the HTTP API.
//
// It supports two authentication modes:
//   - "none": no authentication (default); every request runs as DefaultUserID
//   - "local": local users with bearer API tokens or session cookies
//
// # Configuration
//
//	AUTH_MODE=none                         # Default, single-user mode
//	AUTH_MODE=local                        # Requires /api/auth/setup then login
//	AUTH_SESSION_SECRET=<hex-32-bytes>     # CSRF key; generated per process if empty
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_TOKEN_EXPIRY=720h
//	AUTH_BCRYPT_COST=12
//	AUTH_SECURE_COOKIES=true
//	AUTH_MAX_LOGIN_ATTEMPTS=5
//	AUTH_LOCKOUT_DURATION=30m
//
// # Usage
//
//	authService := auth.NewService(users.NewRepository(db), cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, sessions, cfg.Auth)
//	router.Use(authMiddleware.Handler())
//
// Handlers scope their queries by owner:
//
//	ownerID := auth.GetUserID(c) // DefaultUserID in "none" mode
package auth
