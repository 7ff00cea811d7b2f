package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
)

func TestNormalizeMobile(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		expected    string
		expectedErr error
	}{
		{name: "bare national mobile", raw: "13800138000", expected: "+8613800138000"},
		{name: "spaced national mobile", raw: "138 0013 8000", expected: "+8613800138000"},
		{name: "e164 mobile", raw: "+8613800138000", expected: "+8613800138000"},
		{name: "international prefix with spaces", raw: "+86 138 0013 8000", expected: "+8613800138000"},
		{name: "guangzhou landline", raw: "020 8888 8888", expectedErr: domain.ErrNotMobileNumber},
		{name: "too short", raw: "12345", expectedErr: domain.ErrInvalidPhoneNumber},
		{name: "not a number", raw: "call me", expectedErr: domain.ErrInvalidPhoneNumber},
		{name: "empty", raw: "", expectedErr: domain.ErrInvalidPhoneNumber},
		{name: "foreign number", raw: "+1 650 253 0000", expectedErr: domain.ErrInvalidPhoneNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeMobile(tt.raw)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNationalNumber(t *testing.T) {
	got, err := NationalNumber("+8613800138000")
	assert.NoError(t, err)
	assert.Equal(t, "13800138000", got)
	assert.Equal(t, "tel_13800138000", PhoneUserID(got))

	_, err = NationalNumber("garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidPhoneNumber)
}
