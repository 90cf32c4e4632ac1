package request_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/aggregates/request"
)

func TestKind_IsValid(t *testing.T) {
	assert.True(t, request.KindMoveIn.IsValid())
	assert.True(t, request.KindMoveOut.IsValid())
	assert.True(t, request.KindRenewal.IsValid())
	assert.False(t, request.Kind("visit").IsValid())
	assert.False(t, request.Kind("").IsValid())
}

func TestDetailEnvelope_RoundTrip(t *testing.T) {
	expiry := time.Date(2027, 3, 15, 0, 0, 0, 0, time.UTC)
	original := request.HHOCompanyDetail{
		ContactEmail:       "ops@stays.example.com",
		Phone:              "+971500000003",
		CompanyName:        "Coastal Stays LLC",
		TradeLicenseNumber: "TL-558812",
		TradeLicenseExpiry: expiry,
		PermitNumber:       "HH-2211",
	}

	raw, err := request.MarshalDetail(original)
	require.NoError(t, err)

	decoded, err := request.UnmarshalDetail(raw)
	require.NoError(t, err)
	require.Equal(t, request.CategoryHHOCompany, decoded.Category())

	got, ok := decoded.(request.HHOCompanyDetail)
	require.True(t, ok)
	assert.Equal(t, original, got)
}

func TestUnmarshalDetail_UnknownCategory(t *testing.T) {
	_, err := request.UnmarshalDetail([]byte(`{"category":"visitor","data":{}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown detail category")
}

func TestDetail_Values_OmitsAbsentFields(t *testing.T) {
	values := request.TenantDetail{
		ContactEmail: "tenant@example.com",
		LeaseStart:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}.Values()

	assert.Equal(t, "tenant@example.com", values[request.FieldEmail])
	assert.Equal(t, "2026-09-01", values[request.FieldLeaseStart])
	assert.NotContains(t, values, request.FieldPhone)
	assert.NotContains(t, values, request.FieldLeaseEnd)
	assert.NotContains(t, values, request.FieldContractNumber)
}
