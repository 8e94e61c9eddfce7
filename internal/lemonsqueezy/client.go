package lemonsqueezy

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Client клиент API Lemon Squeezy.
type Client struct {
	apiKey     string
	storeID    string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент Lemon Squeezy.
func NewClient(apiKey, storeID string) *Client {
	return &Client{
		apiKey:     apiKey,
		storeID:    storeID,
		apiURL:     "https://api.lemonsqueezy.com/v1",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(method, path string, body interface{}) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/vnd.api+json")
	req.Header.Set("Content-Type", "application/vnd.api+json")
	return req, nil
}

// CreateCheckout создает чекаут для варианта variantID, вкладывая custom data
// с идентификаторами платежа, пользователя и продукта. Возвращает ссылку
// на страницу оплаты.
func (c *Client) CreateCheckout(variantID, redirectURL string, custom CustomData) (*CreateCheckoutResponse, error) {
	reqBody := CreateCheckoutRequest{
		Data: CheckoutData{
			Type: "checkouts",
			Relationships: CheckoutRelationships{
				Store:   Relationship{Data: RelationshipData{Type: "stores", ID: c.storeID}},
				Variant: Relationship{Data: RelationshipData{Type: "variants", ID: variantID}},
			},
		},
	}
	reqBody.Data.Attributes.CheckoutData.Custom = custom
	reqBody.Data.Attributes.ProductOptions.RedirectURL = redirectURL

	req, err := c.newRequest("POST", "/checkouts", reqBody)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var checkoutResp CreateCheckoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&checkoutResp); err != nil {
		return nil, err
	}
	return &checkoutResp, nil
}

// VerifySignature проверяет подпись вебхука: HMAC-SHA256 от сырого тела
// запроса в hex, сравнение без уязвимости по времени. Подпись считается
// от недекодированного тела, а не от перепарсенного JSON.
func VerifySignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expectedSig := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expectedSig), []byte(signature))
}
