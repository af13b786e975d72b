// Package promptpay builds EMVCo-style PromptPay payloads, the strings a
// code-rendering widget turns into scannable payment codes.
package promptpay

import (
	"fmt"
	"strings"

	"cardtrack/internal/core"
)

// EMV field identifiers used in the payload.
const (
	idPayloadFormat     = "00"
	idPointOfInitiation = "01"
	idMerchantInfo      = "29"
	idCurrency          = "53"
	idAmount            = "54"
	idCountry           = "58"
	idCRC               = "63"

	promptPayAID = "A000000677010111"
	currencyTHB  = "764"
	countryTH    = "TH"
)

// Payload builds a PromptPay payload for the given phone-style payee
// reference and amount. A positive amount produces a dynamic (one-shot)
// code; a zero amount produces a static one.
func Payload(phone string, amount core.Money) string {
	var b strings.Builder
	b.WriteString(field(idPayloadFormat, "01"))
	if amount.Cents > 0 {
		b.WriteString(field(idPointOfInitiation, "12"))
	} else {
		b.WriteString(field(idPointOfInitiation, "11"))
	}
	merchant := field("00", promptPayAID) + field("01", formatTarget(phone))
	b.WriteString(field(idMerchantInfo, merchant))
	b.WriteString(field(idCurrency, currencyTHB))
	if amount.Cents > 0 {
		b.WriteString(field(idAmount, fmt.Sprintf("%.2f", amount.Baht())))
	}
	b.WriteString(field(idCountry, countryTH))

	// CRC covers everything up to and including its own id and length.
	payload := b.String() + idCRC + "04"
	return payload + fmt.Sprintf("%04X", crc16([]byte(payload)))
}

func field(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

// formatTarget converts a local phone number to the 13-character PromptPay
// target: country code 0066 replaces the leading zero.
func formatTarget(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r < '0' || r > '9' {
			return -1
		}
		return r
	}, phone)
	if len(digits) == 10 && strings.HasPrefix(digits, "0") {
		return "0066" + digits[1:]
	}
	return digits
}

// crc16 is CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF), per the EMV spec.
func crc16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
