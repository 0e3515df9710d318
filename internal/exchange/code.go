package exchange

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const (
	codePrefix     = "EXC"
	codeSuffixLen  = 3
	base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// CodeGenerator produces exchange codes of the form EXC-<TIME36>-<RAND3>.
// The time part is the creation instant in milliseconds, base 36, so codes
// sort roughly by creation and can be dated when debugging. Uniqueness is
// enforced by the store, not here.
type CodeGenerator struct {
	now  func() time.Time
	intN func(n int) int
}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{now: time.Now, intN: rand.IntN}
}

func (g *CodeGenerator) Generate() string {
	stamp := strings.ToUpper(strconv.FormatInt(g.now().UnixMilli(), 36))

	suffix := make([]byte, codeSuffixLen)
	for i := range suffix {
		suffix[i] = base36Alphabet[g.intN(len(base36Alphabet))]
	}
	return codePrefix + "-" + stamp + "-" + string(suffix)
}
