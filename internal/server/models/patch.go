package models

import "encoding/json"

// Patch is a raw partial-update payload keyed by JSON member name. Services
// decide which members are writable.
type Patch map[string]json.RawMessage
