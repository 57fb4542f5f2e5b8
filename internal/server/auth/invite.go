package auth

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/carshow/internal/common"
)

// EncodeInviteCode packs the admin id and the one-time token into a single
// URL-safe value so the raw token never appears in the link.
func EncodeInviteCode(adminID, token string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(adminID + ":" + token))
}

func DecodeInviteCode(code string) (adminID, token string, err error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(code))
	if err != nil {
		return "", "", fmt.Errorf("%w: malformed invite code", common.ErrInvalidToken)
	}
	adminID, token, ok := strings.Cut(string(raw), ":")
	if !ok || adminID == "" || token == "" {
		return "", "", fmt.Errorf("%w: malformed invite code", common.ErrInvalidToken)
	}
	return adminID, token, nil
}
