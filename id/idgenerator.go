// Package id generates identifiers for data and timer sources.
package id

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator produces unique identifiers.
type IDGenerator interface {
	Generate() string
}

// NewIDGenerator returns a sequential generator. The first ID is "1".
// Sequential IDs are reproducible from run to run, which keeps recorded
// traces comparable.
func NewIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

// NewXIDGenerator returns a generator of globally unique IDs. Use it when
// traces of several devices end up in the same store.
func NewXIDGenerator() IDGenerator {
	return xidGenerator{}
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)

	return strconv.FormatUint(idNumber, 10)
}

type xidGenerator struct{}

func (xidGenerator) Generate() string {
	return xid.New().String()
}
