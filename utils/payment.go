package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// RazorpaySignature computes the signature Razorpay sends back for a
// completed checkout of gatewayOrderID paid by paymentID
func RazorpaySignature(secret, gatewayOrderID, paymentID string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyRazorpaySignature reports whether signature is genuine
func VerifyRazorpaySignature(secret, gatewayOrderID, paymentID, signature string) bool {
	expected := RazorpaySignature(secret, gatewayOrderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
