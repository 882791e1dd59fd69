package embedded

import _ "embed"

// MockSeedData contains the doctors and symptom table loaded by the mock backend.
//
//go:embed mock/seed.yaml
var MockSeedData []byte
