package security

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TicketQR is the payload encoded in a ticket QR code.
type TicketQR struct {
	TicketID  string    `json:"ticket_id"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
	Platform  string    `json:"platform"`
}

// EncodeTicketQR returns "<base64url payload>.<signature>".
func (s *Signer) EncodeTicketQR(ticketID int64, email string) (string, error) {
	payload, err := json.Marshal(TicketQR{
		TicketID:  strconv.FormatInt(ticketID, 10),
		Email:     email,
		Timestamp: s.now().UTC(),
		Platform:  Issuer,
	})
	if err != nil {
		return "", fmt.Errorf("marshal qr payload: %w", err)
	}
	return EncodeBase64URL(payload) + "." + s.Sign(payload), nil
}

// DecodeTicketQR checks the signature and returns the payload.
func (s *Signer) DecodeTicketQR(data string) (*TicketQR, error) {
	encoded, sig, ok := strings.Cut(data, ".")
	if !ok {
		return nil, ErrInvalidToken
	}
	payload, err := DecodeBase64URL(encoded)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !s.Verify(payload, sig) {
		return nil, ErrInvalidToken
	}

	var qr TicketQR
	if err := json.Unmarshal(payload, &qr); err != nil {
		return nil, ErrInvalidToken
	}
	if qr.TicketID == "" || qr.Email == "" || qr.Platform != Issuer {
		return nil, ErrInvalidToken
	}
	return &qr, nil
}
