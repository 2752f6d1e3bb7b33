package reporting

import (
	"fmt"
	"strings"

	"github.com/jobh/imoveis/internal/domain/models"
)

const (
	pixPayloadHeader = "000201"
	pixCRCTag        = "6304"
)

var pixWhitespace = strings.NewReplacer("\r", "", "\n", "", "\t", "")

// PixPayload returns the static "copia e cola" payload of the configuration. A payload
// that starts like a BR Code but has no CRC field gets one appended.
func PixPayload(cfg *models.PixConfig) string {
	if cfg == nil {
		return ""
	}
	payload := strings.TrimSpace(pixWhitespace.Replace(cfg.PixPayload))
	if payload == "" {
		return ""
	}
	if !strings.HasPrefix(payload, pixPayloadHeader) || hasPixCRC(payload) {
		return payload
	}
	if !strings.HasSuffix(payload, pixCRCTag) {
		payload += pixCRCTag
	}
	return payload + fmt.Sprintf("%04X", crc16CCITT(payload))
}

// hasPixCRC reports whether the payload ends with the CRC field: the "6304" tag followed
// by four checksum characters. The tag may also appear inside keys or names.
func hasPixCRC(payload string) bool {
	n := len(payload)
	return n >= 8 && payload[n-8:n-4] == pixCRCTag
}

// crc16CCITT is CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF), the checksum of BR Codes.
func crc16CCITT(data string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(data); i++ {
		crc ^= uint16(data[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
