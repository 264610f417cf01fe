// Package metadata stamps consolidated documents with a snapshot block and verifies it.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// TagStart is the start of the snapshot block.
	TagStart = "<!-- KBSYNC_START"
	// TagEnd is the end of the snapshot block.
	TagEnd = "KBSYNC_END -->"
)

// Snapshot verification errors.
var (
	ErrNoMetadataBlock = errors.New("no snapshot block found")
	ErrNoHashFound     = errors.New("no hash found in snapshot block")
	ErrHashMismatch    = errors.New("hash mismatch")
)

// Metadata describes one written snapshot.
type Metadata struct {
	SyncedAt   time.Time
	Hash       string
	Articles   int
	Validation bool
}

var metadataRegex = regexp.MustCompile(`(?s)\n?<!--\s*KBSYNC_START\s*\n(.*?)\n\s*KBSYNC_END\s*-->\n?`)

// Extract splits content into its snapshot block (nil when absent) and the
// document without it. The returned document is what gets hashed; Sign adds one
// newline before the block and Extract removes exactly that one.
func Extract(content string) (*Metadata, string) {
	match := metadataRegex.FindStringSubmatch(content)
	clean := metadataRegex.ReplaceAllString(content, "")

	if len(match) < 2 {
		return nil, clean
	}

	meta := &Metadata{}

	for line := range strings.SplitSeq(match[1], "\n") {
		key, val, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		switch key {
		case "VALIDATION":
			meta.Validation = strings.EqualFold(val, "TRUE")
		case "SYNCED_AT":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				meta.SyncedAt = t
			}
		case "ARTICLES":
			if n, err := strconv.Atoi(val); err == nil {
				meta.Articles = n
			}
		case "HASH":
			meta.Hash = val
		}
	}

	return meta, clean
}

// CalculateHash computes the SHA-256 of content with any snapshot block removed.
func CalculateHash(content string) string {
	_, clean := Extract(content)
	hash := sha256.Sum256([]byte(clean))

	return hex.EncodeToString(hash[:])
}

// Sign appends a fresh snapshot block to content, replacing any existing one.
// meta.Hash is ignored and recomputed; a zero SyncedAt means now.
func Sign(content string, meta Metadata) string {
	_, clean := Extract(content)

	syncedAt := meta.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = time.Now()
	}

	valStr := "FALSE"
	if meta.Validation {
		valStr = "TRUE"
	}

	block := fmt.Sprintf("\n%s\nVALIDATION: %s\nSYNCED_AT: %s\nARTICLES: %d\nHASH: %s\n%s\n",
		TagStart, valStr, syncedAt.UTC().Format(time.RFC3339), meta.Articles, CalculateHash(clean), TagEnd)

	return clean + block
}

// Verify checks that content still matches the hash recorded in its snapshot block.
func Verify(content string) (*Metadata, error) {
	meta, clean := Extract(content)
	if meta == nil {
		return nil, ErrNoMetadataBlock
	}

	if meta.Hash == "" {
		return meta, ErrNoHashFound
	}

	if calculated := CalculateHash(clean); calculated != meta.Hash {
		return meta, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, meta.Hash, calculated)
	}

	return meta, nil
}
