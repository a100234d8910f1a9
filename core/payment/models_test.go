package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceCents(t *testing.T) {
	tests := []struct {
		pkg  string
		want int
		ok   bool
	}{
		{PackageThreePerWeek, 79500, true},
		{PackageFourPerWeek, 83500, true},
		{PackageFivePerWeek, 87500, true},
		{"4", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := PriceCents(tt.pkg)
		assert.Equal(t, tt.want, got, "package %q", tt.pkg)
		assert.Equal(t, tt.ok, ok, "package %q", tt.pkg)
	}
}

func TestTotalCents(t *testing.T) {
	// 3 players on the 4x/week package
	total, ok := TotalCents(PackageFourPerWeek, 3)
	assert.True(t, ok)
	assert.Equal(t, 250500, total)

	total, ok = TotalCents(PackageThreePerWeek, 1)
	assert.True(t, ok)
	assert.Equal(t, 79500, total)

	_, ok = TotalCents(PackageFourPerWeek, 0)
	assert.False(t, ok)

	_, ok = TotalCents("9", 2)
	assert.False(t, ok)
}

func TestCapturePaymentValidate(t *testing.T) {
	cp := CapturePayment{
		SourceID:    "cnon:tok_123",
		GuardianID:  "g1",
		PlayerIDs:   []string{"p1", "p2"},
		PackageType: PackageFourPerWeek,
		BuyerEmail:  "Parent@Example.com",
	}
	assert.NoError(t, cp.Validate())
	assert.Equal(t, "parent@example.com", cp.BuyerEmail)

	bad := CapturePayment{PackageType: "7", Season: "Offseason"}
	err := bad.Validate()
	assert.Error(t, err)
}
