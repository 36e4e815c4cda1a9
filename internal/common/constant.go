package common

// AuthorizationHeaderName carries the bearer credential on every
// authenticated request.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only authorization scheme the API accepts.
const BearerScheme = "Bearer"

// TokenType is reported to clients alongside issued access tokens.
const TokenType = "bearer"
