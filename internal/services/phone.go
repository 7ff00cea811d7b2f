package services

import (
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
)

const (
	phoneRegion       = "CN"
	mobileE164Prefix  = "+861"
	phoneUserIDPrefix = "tel_"
)

// NormalizeMobile parses a user supplied number as a mainland China number
// and returns its E.164 form. Only numbers whose E.164 form starts with +861
// are accepted.
func NormalizeMobile(raw string) (string, error) {
	num, err := phonenumbers.Parse(raw, phoneRegion)
	if err != nil {
		return "", domain.ErrInvalidPhoneNumber
	}
	if !phonenumbers.IsValidNumberForRegion(num, phoneRegion) {
		return "", domain.ErrInvalidPhoneNumber
	}

	e164 := phonenumbers.Format(num, phonenumbers.E164)
	if !strings.HasPrefix(e164, mobileE164Prefix) {
		return "", domain.ErrNotMobileNumber
	}
	return e164, nil
}

// NationalNumber renders an E.164 number in national format with all
// whitespace removed: +8613800138000 -> 13800138000
func NationalNumber(e164 string) (string, error) {
	num, err := phonenumbers.Parse(e164, phoneRegion)
	if err != nil {
		return "", domain.ErrInvalidPhoneNumber
	}
	national := phonenumbers.Format(num, phonenumbers.NATIONAL)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, national), nil
}

// PhoneUserID is the TRTC user id of the phone participant
func PhoneUserID(national string) string {
	return phoneUserIDPrefix + national
}
