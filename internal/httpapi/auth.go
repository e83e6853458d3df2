package httpapi

import (
	"errors"
	"net/http"

	"inksight/pkg/models"
)

// APIKeyHeader carries the tenant's opaque token. The key doubles as
// the tenant id: per-tenant job and storage partitioning hangs off it
// directly, with no separate user lookup.
const APIKeyHeader = "X-API-Key"

// devTenant is the tenant every request maps to when no API keys are
// configured (development mode).
const devTenant = "dev_mode"

// authenticate resolves the request's tenant id, or a classified error
// when the key is missing or not in the configured set. With no keys
// configured at all, every request is accepted as the dev tenant.
func (s *Server) authenticate(r *http.Request) (string, error) {
	if len(s.validKeys) == 0 {
		return devTenant, nil
	}

	key := r.Header.Get(APIKeyHeader)
	if key == "" {
		return "", models.NewError(models.KindAuthMissing, "",
			errors.New("missing API key, provide "+APIKeyHeader+" header"))
	}
	if _, ok := s.validKeys[key]; !ok {
		return "", models.NewError(models.KindAuthInvalid, "", errors.New("invalid API key"))
	}
	return key, nil
}
