// SPDX-License-Identifier: Apache-2.0
package installer

import "testing"

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name    string
		wantErr string
	}{
		{"alice", ""},
		{"_svc", ""},
		{"web-runner_2", ""},
		{"a", ""},
		{"", "Username cannot be empty"},
		{"Alice", "Username must start with a lowercase letter or underscore"},
		{"9lives", "Username must start with a lowercase letter or underscore"},
		{"-dash", "Username must start with a lowercase letter or underscore"},
		{"al ice", "Username must start with a lowercase letter or underscore"},
		{"böb", "Username must start with a lowercase letter or underscore"},
	}

	for _, tt := range tests {
		err := ValidateUsername(tt.name, nil)
		if tt.wantErr == "" {
			if err != nil {
				t.Errorf("ValidateUsername(%q) = %v, want nil", tt.name, err)
			}
			continue
		}
		if err == nil || err.Error() != tt.wantErr {
			t.Errorf("ValidateUsername(%q) = %v, want %q", tt.name, err, tt.wantErr)
		}
	}
}

func TestValidateUsernameDuplicate(t *testing.T) {
	existing := []UserEntry{{Username: "alice"}, {Username: "bob"}}

	err := ValidateUsername("alice", existing)
	if err == nil || err.Error() != "User already exists" {
		t.Errorf("ValidateUsername(alice) = %v, want User already exists", err)
	}
	if err := ValidateUsername("carol", existing); err != nil {
		t.Errorf("ValidateUsername(carol) = %v, want nil", err)
	}
}
