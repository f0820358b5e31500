package receipt

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anavsan/anavsan/console/internal/billing"
	"github.com/anavsan/anavsan/console/internal/payment"
)

func sampleReceipt(t *testing.T) *payment.Receipt {
	t.Helper()
	q, err := payment.QuoteFor(billing.Team, billing.Yearly)
	require.NoError(t, err)
	return payment.NewReceipt(payment.Charge{SessionID: "cs_test", Quote: q, Method: payment.Card},
		time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC))
}

func TestGenerateProducesPDF(t *testing.T) {
	data, err := NewGenerator(DefaultIssuer).Generate(sampleReceipt(t))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Greater(t, len(data), 500)
}

func TestSaveWritesNamedFile(t *testing.T) {
	r := sampleReceipt(t)
	dir := filepath.Join(t.TempDir(), "receipts")

	path, err := NewGenerator(DefaultIssuer).Save(dir, r)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, r.Number+".pdf"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestNilReceipt(t *testing.T) {
	_, err := NewGenerator(DefaultIssuer).Generate(nil)
	assert.Error(t, err)
	_, err = NewGenerator(DefaultIssuer).Save(t.TempDir(), nil)
	assert.Error(t, err)
}
