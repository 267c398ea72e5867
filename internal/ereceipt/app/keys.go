package app

import (
	"strings"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/jwtx"
)

// parseKeyConfigs splits the "kid1:secret1,kid2:secret2" env value.
// Malformed entries are dropped here; the key ring applies its own
// minimum-length policy on what remains.
func parseKeyConfigs(raw string) []jwtx.KeyConfig {
	var keys []jwtx.KeyConfig
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		kid, secret, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		keys = append(keys, jwtx.KeyConfig{
			KID:    strings.TrimSpace(kid),
			Secret: secret,
		})
	}
	return keys
}

// buildKeyRing assembles the signing ring from config. An empty ring is
// a startup error: a receipt service that cannot sign is not a service.
func buildKeyRing(cfg Config) (*jwtx.KeyRing, error) {
	return jwtx.NewKeyRing(parseKeyConfigs(cfg.Keys), cfg.ActiveKID, cfg.LegacySecret)
}
