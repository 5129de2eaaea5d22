package notify

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Lauda128109319/food-alert/internal/domain/food"
)

const alertTitle = "賞味期限が近い食材があります！"

// BuildMessage names up to three items plus a count of the remainder,
// matching the service-worker notification body.
func BuildMessage(items []food.Item) (title, body string) {
	names := make([]string, 0, 3)

	for i, it := range items {
		if i == 3 {
			break
		}
		names = append(names, it.Name)
	}

	body = strings.Join(names, "、")

	if len(items) > 3 {
		body += fmt.Sprintf(" 他%d件", len(items)-3)
	}

	return alertTitle, body
}

// Digest identifies one notification payload; an unchanged digest means the
// user already has this exact notification and a resend would be a no-op
// replace anyway.
func Digest(tag, body string) string {
	sum := sha256.Sum256([]byte(tag + "\x00" + body))
	return hex.EncodeToString(sum[:])
}
