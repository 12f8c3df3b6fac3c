package service

import (
	"fmt"
	"strings"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// ReferenceGenerator builds transaction references of the form
// <channel><unix-nanos>-<8 hex chars>.
type ReferenceGenerator struct {
	now    func() time.Time
	suffix func() string
}

func NewReferenceGenerator() *ReferenceGenerator {
	return &ReferenceGenerator{
		now:    time.Now,
		suffix: randomSuffix,
	}
}

// Next returns a fresh reference for channel.
func (g *ReferenceGenerator) Next(channel domain.Channel) string {
	return fmt.Sprintf("%s%d-%s", channel, g.now().UnixNano(), g.suffix())
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
