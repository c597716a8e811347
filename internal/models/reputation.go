package models

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"time"
)

// Reputation represents the canonical domain reputation stored in Elasticsearch.
// The document ID is the normalized domain.
type Reputation struct {
	Domain    string    `json:"domain"`
	Score     int       `json:"score"`
	Status    string    `json:"status"`
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdateID  string    `json:"update_id"`
}

// Fingerprint hashes the fields that change what lookups return.
func (r Reputation) Fingerprint() string {
	s := sha1.Sum([]byte(r.Domain + "|" + strconv.Itoa(r.Score) + "|" + r.Status + "|" + r.Source))
	return hex.EncodeToString(s[:])
}
