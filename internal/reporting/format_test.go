package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", FormatBRL(1234.56))
	assert.Equal(t, "R$ 0,00", FormatBRL(0))
	assert.Equal(t, "R$ 1.500.000,00", FormatBRL(1_500_000))
}

func TestFormatDateUsesLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	ts := time.Date(2026, 4, 2, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, "01/04/2026", FormatDate(ts, loc))
	assert.Equal(t, "01/04/2026 22:30", FormatDateTime(ts, loc))
}
