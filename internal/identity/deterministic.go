package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// PageUUID identifies a page by its web path.
func PageUUID(webPath string) uuid.UUID {
	return UUID("flatcms:page:" + normalizePath(webPath))
}

// MenuItemUUID identifies a menu entry by its base-dir relative path.
func MenuItemUUID(relativePath string) uuid.UUID {
	return UUID("flatcms:menu_item:" + normalizePath(relativePath))
}

func normalizePath(value string) string {
	return "/" + strings.Trim(strings.TrimSpace(value), "/")
}
