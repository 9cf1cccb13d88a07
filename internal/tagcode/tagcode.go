// Package tagcode insan tarafından okunabilir, taranabilir kodlar üretir:
// <ÖNEK>-<base36 milisaniye>-<4 hex>.
package tagcode

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const CollectionPrefix = "WC"

// Etiketler URL yolunda kaçışsız taşınır.
var validPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

func New(prefix string, now time.Time) string {
	ts := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return strings.ToUpper(prefix) + "-" + ts + "-" + suffix
}

// Valid: yalnızca harf, rakam, nokta, alt çizgi ve tire.
func Valid(code string) bool {
	return validPattern.MatchString(code)
}
