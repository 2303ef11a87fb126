package auth

import "context"

var _ Checker = (*LoginChecker)(nil)

// TokenHeader carries the admin session token.
const TokenHeader = "X-Auth-Token"

type Checker interface {
	IsLogged(ctx context.Context, token string) (bool, error)
}
