package common

// AuthorizationHeaderName carries the bearer token on inbound HTTP requests.
const AuthorizationHeaderName = "Authorization"

// AuthorizationMetadataKey is the gRPC metadata key for the bearer token.
// gRPC lowercases all metadata keys.
const AuthorizationMetadataKey = "authorization"

// DefaultRenewedTokenHeader is the response header that carries a renewed
// access token unless configured otherwise.
const DefaultRenewedTokenHeader = "X-Renewed-Token"

// Role names seeded with the identity tables.
const (
	RoleAdministrador = "Administrador"
	RoleUsuario       = "Usuario"
)
