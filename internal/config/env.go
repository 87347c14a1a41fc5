// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv fills cfg from the VAULT_*, STORAGE_DB_*, CRYPTO_*, LOG_* and
// CONFIG variables declared on [StructuredConfig]. Unset variables leave
// their fields zero so later sources and defaults can fill them; a value
// that does not convert (CRYPTO_KDF_ITERATIONS=abc) is an error.
func parseEnv(cfg *StructuredConfig) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse vault env: %w", err)
	}
	return nil
}
