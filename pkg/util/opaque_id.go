package util

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateOpaqueID returns a collision-resistant opaque identifier built
// from the current timestamp in base36 plus six random base36 characters.
// Used for machine-readable category ids.
func GenerateOpaqueID() string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36)))
	for i := 0; i < 6; i++ {
		b.WriteByte(idAlphabet[rand.Intn(len(idAlphabet))])
	}
	return b.String()
}
