package importer

import (
	"io"

	"github.com/pcaldeira/attest/internal/importer/deposits"
)

type Format string

const (
	FormatDeposits Format = "deposits"
)

type Parser interface {
	Parse(r io.Reader) ([]deposits.Deposit, error)
}
