// SPDX-License-Identifier: Apache-2.0
package gitrepo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ProtonMail/gopenpgp/v3/crypto"
	"github.com/ProtonMail/gopenpgp/v3/profile"

	"github.com/Work-Fort/Foundry/pkg/config"
)

// VerifyRepoConfig checks the detached signature on the repository's
// foundry.yaml against the operator-pinned public key at keyPath. The key
// path comes from user or system scope only, never from the repo, so the
// repo cannot vouch for itself.
//
// An empty keyPath skips verification entirely. A pinned key with a
// missing config or signature file is an error: silence must not
// downgrade a configured trust requirement.
func VerifyRepoConfig(repoRoot, keyPath string) error {
	if keyPath == "" {
		return nil
	}

	configPath := filepath.Join(repoRoot, config.LocalConfigFile+config.DefaultConfigExt)
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("repo config not found for verification: %w", err)
	}
	signature, err := os.ReadFile(configPath + ".asc")
	if err != nil {
		return fmt.Errorf("repo config signature not found: %w", err)
	}

	key, err := loadVerifyKey(keyPath)
	if err != nil {
		return err
	}

	pgp := crypto.PGPWithProfile(profile.RFC4880())
	verifier, err := pgp.Verify().
		VerificationKey(key).
		New()
	if err != nil {
		return fmt.Errorf("failed to create verifier: %w", err)
	}

	// Try armored format first
	result, err := verifier.VerifyDetached(data, signature, crypto.Armor)
	if err != nil {
		result, err = verifier.VerifyDetached(data, signature, crypto.Bytes)
		if err != nil {
			return fmt.Errorf("signature verification failed (tried both armored and binary formats): %w", err)
		}
	}
	if sigErr := result.SignatureError(); sigErr != nil {
		return fmt.Errorf("signature error: %w", sigErr)
	}
	return nil
}

func loadVerifyKey(keyPath string) (*crypto.Key, error) {
	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read verify key: %w", err)
	}

	key, err := crypto.NewKeyFromArmored(string(keyData))
	if err == nil {
		return key, nil
	}
	// Fall back to binary format
	key, err = crypto.NewKey(keyData)
	if err != nil {
		return nil, fmt.Errorf("invalid verify key %s: %w", keyPath, err)
	}
	return key, nil
}
