package notifications

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Don't let slow receivers block the worker.
var client = &http.Client{Timeout: 5 * time.Second}

// SendWebhook posts the JSON payload to url, signing the body with an
// HMAC-SHA256 of the shared secret.
func SendWebhook(url string, payload any, secret string) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Maggie-Webhook/1.0")
	req.Header.Set("X-Signature", Sign(jsonData, secret))

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("webhook receiver returned status %d", resp.StatusCode)
}

// Sign returns the hex HMAC-SHA256 of body under secret. Receivers verify
// it against the X-Signature header.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
